package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
)

const minPasswordLen = 8

type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
	log    zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, log zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, log: log}
}

// RegisterInput carries the self-service signup form: a new organization and
// its first admin user.
type RegisterInput struct {
	OrganizationName string `json:"organizationName"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token        string
	User         *User
	Organization *Organization
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	var missing []string
	if strings.TrimSpace(in.OrganizationName) == "" {
		missing = append(missing, "organizationName")
	}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if !validEmail(in.Email) {
		missing = append(missing, "email")
	}
	if len(in.Password) < minPasswordLen {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationFields(missing...)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	org := &Organization{Name: strings.TrimSpace(in.OrganizationName)}
	admin := &User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if err := s.repo.Register(ctx, org, admin); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(admin.ID, org.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, User: admin, Organization: org}, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same response so callers cannot enumerate registered addresses.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperr.Unauthorized("invalid email or password")

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, invalid
	}

	org, err := s.repo.GetOrganization(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(user.ID, user.OrganizationID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, User: user, Organization: org}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if len(next) < minPasswordLen {
		return apperr.ValidationFields("newPassword")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// RequestPasswordReset issues a short-lived reset token. An unknown email
// returns an empty token with no error, keeping the endpoint's behavior
// identical for registered and unregistered addresses.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", nil
		}
		return "", err
	}
	token, err := s.issuer.IssueReset(user.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("password reset token issued")
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.issuer.VerifyReset(token)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return apperr.ValidationFields("password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// ResolvePrincipal satisfies auth.PrincipalResolver: the auth middleware
// calls it on every request to confirm the token's user still exists.
func (s *Service) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (auth.Principal, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: user.ID, OrgID: user.OrganizationID, Role: user.Role}, nil
}

func (s *Service) GetOrganization(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	return s.repo.GetOrganization(ctx, orgID)
}

// OrganizationUpdate carries the settings PATCH. Nil fields stay unchanged.
type OrganizationUpdate struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
}

func (s *Service) UpdateOrganization(ctx context.Context, orgID uuid.UUID, in OrganizationUpdate) (*Organization, error) {
	var bad []string
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		bad = append(bad, "name")
	}
	if in.Email != nil && *in.Email != "" && !validEmail(*in.Email) {
		bad = append(bad, "email")
	}
	if len(bad) > 0 {
		return nil, apperr.ValidationFields(bad...)
	}

	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		org.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		org.Address = *in.Address
	}
	if in.Phone != nil {
		org.Phone = *in.Phone
	}
	if in.Email != nil {
		org.Email = *in.Email
	}
	if in.Website != nil {
		org.Website = *in.Website
	}
	if err := s.repo.UpdateOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
