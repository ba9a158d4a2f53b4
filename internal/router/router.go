package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dailyroutine/internal/handler"
)

// SetupRouter configures the Gin engine and routes.
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/login", api.Login)
			auth.POST("/register", api.Register)
		}

		// everything below requires a valid bearer token
		secured := apiGroup.Group("")
		secured.Use(api.AuthRequired())
		{
			students := secured.Group("/students")
			{
				students.GET("", api.GetStudents)
				students.POST("", api.CreateStudent)
				students.GET("/:id", api.GetStudent)
				students.PUT("/:id", api.UpdateStudent)
				students.DELETE("/:id", api.DeleteStudent)
			}

			routines := secured.Group("/routines")
			{
				routines.GET("/student/:studentId", api.GetRoutinesByStudent)
				routines.GET("/date/:date", api.GetRoutinesByDate)
				routines.GET("/summary/:date", api.GetDailySummary)
				routines.POST("", api.SaveRoutine)
				routines.PUT("/:id/feedback", api.AddFeedback)
				routines.DELETE("/:id", api.DeleteRoutine)
			}
		}
	}

	return r
}
