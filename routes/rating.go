package routes

import (
	"ratehub/controllers"

	"github.com/gin-gonic/gin"
)

// SetupRatingRoutes registers the rating endpoints
func SetupRatingRoutes(router *gin.Engine, controller *controllers.RatingController) {
	api := router.Group("/api")
	{
		api.POST("/rating", controller.SubmitRating)
		api.POST("/summary", controller.GetSummary)
	}
}
