package middlewares

import (
	"github.com/gin-gonic/gin"
	"invigil.io/application/interfaces"
	"invigil.io/application/middlewares"
	"invigil.io/infrastructure/auth"
)

func SessionAuthMiddleware(tokens *auth.SessionTokens, sessions middlewares.ActiveSessions) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		savedCtx := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		appContext, next := middlewares.SessionAuthMiddleware(savedCtx, tokens, sessions)
		if next {
			ctx.Set("AppContext", appContext)
			ctx.Next()
		}
	}
}
