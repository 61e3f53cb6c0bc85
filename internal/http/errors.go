package http

import (
	"time"

	"github.com/gin-gonic/gin"
)

// URLs del contrato de errores. Los types identifican la clase de error;
// los help_url llevan a la guía de resolución.
const (
	errTypeValidation    = "https://recoveryos.org/errors/validation"
	errTypeBusinessRule  = "https://recoveryos.org/errors/business-rule"
	errTypeRateLimit     = "https://recoveryos.org/errors/rate-limit"
	errTypeNotFound      = "https://recoveryos.org/errors/not-found"
	errTypeAuthorization = "https://recoveryos.org/errors/authorization"
	errTypeInternal      = "https://recoveryos.org/errors/internal"

	docsBaseURL = "https://docs.recoveryos.org"
)

// errorEnvelope arma el cuerpo estandarizado de error:
// {status, error:{code,type,title,detail,help_url}, meta:{timestamp}}.
func errorEnvelope(code, errType, title, detail, helpURL string) gin.H {
	return gin.H{
		"status": "error",
		"error": gin.H{
			"code":     code,
			"type":     errType,
			"title":    title,
			"detail":   detail,
			"help_url": helpURL,
		},
		"meta": gin.H{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func validationEnvelope(detail string) gin.H {
	return errorEnvelope(
		"E_VALIDATION",
		errTypeValidation,
		"Validation Failed",
		detail,
		docsBaseURL+"/api/errors#validation",
	)
}

func unauthorizedEnvelope(detail string) gin.H {
	return errorEnvelope(
		"E_UNAUTHORIZED",
		errTypeAuthorization,
		"Authentication Required",
		detail,
		docsBaseURL+"/api/errors#authorization",
	)
}

func internalEnvelope(detail string) gin.H {
	return errorEnvelope(
		"E_INTERNAL",
		errTypeInternal,
		"Internal Server Error",
		detail,
		docsBaseURL+"/api/errors#internal",
	)
}
