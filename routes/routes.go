package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/duclair/tontine-go/config"
	controllers "github.com/duclair/tontine-go/controllers"
	middleware "github.com/duclair/tontine-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	tontines := r.Group("/tontines")
	tontines.Use(auth)
	{
		tontines.POST("", controllers.CreateTontine(cfg))
		tontines.GET("", controllers.ListTontines(cfg))
		tontines.GET("/:id", controllers.GetTontine(cfg))
		tontines.PATCH("/:id", controllers.UpdateTontine(cfg))
		tontines.DELETE("/:id", controllers.DeleteTontine(cfg))

		// lifecycle
		tontines.POST("/:id/start", controllers.StartTontine(cfg))
		tontines.POST("/:id/suspend", controllers.ToggleSuspension(cfg))

		// membership
		tontines.POST("/:id/participants", controllers.AddParticipant(cfg))
		tontines.DELETE("/:id/participants/:participantId", controllers.RemoveParticipant(cfg))
		tontines.PUT("/:id/participants/order", controllers.ReorderParticipants(cfg))
		tontines.POST("/:id/invite", controllers.InviteParticipant(cfg))

		// payment workflow
		tontines.POST("/:id/participants/:participantId/mark-paid", controllers.MarkPaymentPaid(cfg))
		tontines.POST("/:id/participants/:participantId/validate", controllers.ValidatePayment(cfg))
	}

	join := r.Group("/join")
	join.Use(auth)
	{
		join.POST("", controllers.JoinTontine(cfg))
	}

	notifs := r.Group("/notifications")
	notifs.Use(auth)
	{
		notifs.GET("", controllers.ListNotifications(cfg))
		notifs.PATCH("/:id/read", controllers.MarkNotificationRead(cfg))
	}

	dashboard := r.Group("/dashboard")
	dashboard.Use(auth)
	{
		dashboard.GET("", controllers.DashboardStats(cfg))
	}
}
