package middlewares

import (
	"invigil.io/application/interfaces"
	"invigil.io/infrastructure/useragent"
)

// UserAgentMiddleware records the browser details exam sessions are stamped with.
func UserAgentMiddleware(ctx *interfaces.ApplicationContext[any], clientIP string) (*interfaces.ApplicationContext[any], bool) {
	ctx.ClientIP = clientIP
	agent := ctx.GetHeader("User-Agent")
	if agent == nil {
		return ctx, true
	}
	agentDetails := useragent.ParseUserAgent(*agent)
	ctx.UserAgent = *agent
	ctx.DeviceName = agentDetails.Name
	ctx.SetContextData("AgentDetails", agentDetails)
	return ctx, true
}
