// Package response writes the gateway's JSON envelopes for plain HTTP
// endpoints.
package response

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"

	"uob-realtime/pkg/discord"
)

type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

// NewOKResp returns a new OK response with the given data.
func NewOKResp(data any) Resp {
	return Resp{Message: MessageSuccess, Data: data}
}

// OK sends 200 JSON with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, NewOKResp(data))
}

// Error aborts with status and message.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Resp{ErrorCode: status, Message: message})
}

// PanicError answers a recovered panic with a generic 500 and reports the
// request and stack to Discord when a client is configured.
func PanicError(c *gin.Context, rec any, d discord.IDiscord) {
	if d != nil {
		report := discord.MessageOptions{
			Type:        discord.MessageTypeError,
			Title:       "Gateway panic",
			Description: fmt.Sprintf("%v", rec),
			Fields: []discord.EmbedField{
				{Name: "Route", Value: c.Request.Method + " " + c.Request.URL.Path},
				{Name: "Backtrace", Value: strings.Join(captureStackTrace(), "\n")},
			},
		}
		go func() {
			_ = d.SendEmbed(context.Background(), report)
		}()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Resp{
		ErrorCode: InternalServerErrorCode,
		Message:   DefaultErrorMessage,
	})
}

func captureStackTrace() []string {
	var pcs [defaultStackTraceDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var out []string
	for {
		f, more := frames.Next()
		out = append(out, fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function))
		if !more {
			break
		}
	}
	return out
}
