// Package respond writes the API's uniform success envelope. Error bodies
// come from the centralized error handler, never from here.
package respond

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the wire shape of every successful response.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success writes {status:"success", data} with the given status code.
func Success(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: "success", Data: data})
}
