package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the form and result endpoints on an API group.
func RegisterRoutes(api gin.IRouter, form *FormHandler, exports *ExportHandler) {
	sessions := api.Group("/sessions")
	sessions.POST("", form.CreateSession)
	sessions.GET("/:id", form.GetSession)
	sessions.DELETE("/:id", form.DeleteSession)
	sessions.PUT("/:id/floors", form.SetFloors)
	sessions.POST("/:id/floors/:floor/classrooms", form.AddClassroom)
	sessions.POST("/:id/groups", form.AddGroup)
	sessions.POST("/:id/slots", form.AddSlot)
	sessions.PATCH("/:id/rows/:rowId", form.EditRow)
	sessions.DELETE("/:id/rows/:rowId", form.RemoveRow)
	sessions.PUT("/:id/parameters", form.SetParameters)
	sessions.POST("/:id/solve", form.Solve)

	if exports != nil {
		api.GET("/results/:resultId/export", exports.Download)
	}
}
