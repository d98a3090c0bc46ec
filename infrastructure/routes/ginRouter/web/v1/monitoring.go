package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/controller"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
	"invigil.io/application/middlewares"
	"invigil.io/infrastructure/auth"
	middleware "invigil.io/infrastructure/middleware"
)

func bindTelemetry(handler func(*interfaces.ApplicationContext[dto.TelemetryDTO])) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.TelemetryDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		handler(&interfaces.ApplicationContext[dto.TelemetryDTO]{
			Ctx:  ctx,
			Body: &body,
			Keys: appContext.Keys,
		})
	}
}

func MonitoringRouter(router *gin.RouterGroup, tokens *auth.SessionTokens, sessions middlewares.ActiveSessions) {
	router.POST("/sessions", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.StartSessionDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.StartSession(&interfaces.ApplicationContext[dto.StartSessionDTO]{
			Ctx:       ctx,
			Body:      &body,
			Keys:      appContext.Keys,
			UserAgent: appContext.UserAgent,
			ClientIP:  appContext.ClientIP,
		})
	})

	router.GET("/alerts", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var query dto.ListAlertsDTO
		if err := ctx.ShouldBindQuery(&query); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.ListAlerts(&interfaces.ApplicationContext[dto.ListAlertsDTO]{
			Ctx:  ctx,
			Body: &query,
			Keys: appContext.Keys,
		})
	})

	proctored := router.Group("")
	proctored.Use(middleware.SessionAuthMiddleware(tokens, sessions))
	{
		proctored.POST("/monitor_frame", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.MonitorFrameDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.MonitorFrame(&interfaces.ApplicationContext[dto.MonitorFrameDTO]{
				Ctx:  ctx,
				Body: &body,
				Keys: appContext.Keys,
			})
		})

		proctored.POST("/verify_id", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.VerifyIDDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.VerifyID(&interfaces.ApplicationContext[dto.VerifyIDDTO]{
				Ctx:  ctx,
				Body: &body,
				Keys: appContext.Keys,
			})
		})

		proctored.POST("/log_tab_switch", bindTelemetry(controller.LogTabSwitch))
		proctored.POST("/log_mouse_movement", bindTelemetry(controller.LogMouseMovement))
		proctored.POST("/detect_screen_capture", bindTelemetry(controller.DetectScreenCapture))
		proctored.POST("/log_copy_paste", bindTelemetry(controller.LogCopyPaste))
	}
}
