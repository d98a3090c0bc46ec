package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/controller"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
)

func RegistrationRouter(router *gin.RouterGroup) {
	router.POST("/register", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.RegisterCandidateDTO
		// the enrollment page posts a form, API clients send json
		if err := ctx.ShouldBind(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.RegisterCandidate(&interfaces.ApplicationContext[dto.RegisterCandidateDTO]{
			Ctx:  ctx,
			Body: &body,
			Keys: appContext.Keys,
		})
	})

	router.POST("/save_video", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.SaveVideoDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.SaveVideo(&interfaces.ApplicationContext[dto.SaveVideoDTO]{
			Ctx:  ctx,
			Body: &body,
			Keys: appContext.Keys,
		})
	})

	router.GET("/processing_status", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		controller.ProcessingStatus(&interfaces.ApplicationContext[any]{
			Ctx:   ctx,
			Keys:  appContext.Keys,
			Param: map[string]string{"user_id": ctx.Query("user_id")},
		})
	})

	router.POST("/skip_processing", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.SkipProcessingDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.SkipProcessing(&interfaces.ApplicationContext[dto.SkipProcessingDTO]{
			Ctx:  ctx,
			Body: &body,
			Keys: appContext.Keys,
		})
	})

	router.GET("/candidates/:id", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		controller.FetchCandidate(&interfaces.ApplicationContext[any]{
			Ctx:   ctx,
			Keys:  appContext.Keys,
			Param: map[string]string{"id": ctx.Param("id")},
		})
	})
}
