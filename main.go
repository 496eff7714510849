package main

import (
	"fmt"
	"log"
	"os"
	_ "schedule_api/docs"
	"schedule_api/internal/auth"
	"schedule_api/internal/handlers"
	"schedule_api/internal/models"
	"schedule_api/internal/storage"
	"schedule_api/internal/tasks"
	"schedule_api/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						API расписаний учебных занятий
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.EventKind{},
		&models.TimeSlot{},
		&models.EventPlace{},
		&models.EventParticipant{},
		&models.Schedule{},
		&models.Event{},
		&models.EventHolding{},
		&models.DayDateOverride{},
		&models.ImportLog{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	// Чтение открыто всем; авторизация опциональна и нужна только для
	// административной проекции отладочных полей.
	api := r.Group("/api", auth.OptionalAuth())
	{
		api.GET("/subjects", handlers.ListSubjects)
		api.GET("/subjects/:id", handlers.GetSubject)
		api.GET("/events/kind", handlers.ListEventKinds)
		api.GET("/lessonrooms", handlers.ListPlaces)
		api.GET("/lessonrooms/:id", handlers.GetPlace)
		api.GET("/groups", handlers.ListGroups)
		api.GET("/teachers", handlers.ListTeachers)
		api.GET("/participants/:id", handlers.GetParticipant)
		api.GET("/timeslots", handlers.ListTimeSlots)
		api.GET("/timeslots/:id", handlers.GetTimeSlot)
		api.GET("/schedules", handlers.ListSchedules)
		api.GET("/schedules/:id", handlers.GetSchedule)
		api.GET("/events", handlers.ListEvents)
		api.GET("/events/:id", handlers.GetEvent)
		api.GET("/corrections/overrides", handlers.ListOverrides)

		api.GET("/schedules/:id/ws", ws.ScheduleWebSocketHandler)
	}

	// Все мутации доступны только администраторам.
	admin := r.Group("/api", auth.AuthMiddleware(), auth.AdminRequired())
	{
		admin.POST("/subjects", handlers.CreateSubject)
		admin.PUT("/subjects/:id", handlers.UpdateSubject)
		admin.DELETE("/subjects/:id", handlers.DeleteSubject)

		admin.POST("/lessonrooms", handlers.CreatePlace)
		admin.PUT("/lessonrooms/:id", handlers.UpdatePlace)
		admin.DELETE("/lessonrooms/:id", handlers.DeletePlace)

		admin.POST("/participants", handlers.CreateParticipant)
		admin.PUT("/participants/:id", handlers.UpdateParticipant)
		admin.DELETE("/participants/:id", handlers.DeleteParticipant)

		admin.POST("/timeslots", handlers.CreateTimeSlot)
		admin.PUT("/timeslots/:id", handlers.UpdateTimeSlot)
		admin.DELETE("/timeslots/:id", handlers.DeleteTimeSlot)

		admin.POST("/schedules", handlers.CreateSchedule)
		admin.PUT("/schedules/:id", handlers.UpdateSchedule)
		admin.DELETE("/schedules/:id", handlers.DeleteSchedule)

		admin.POST("/events", handlers.CreateEvent)
		admin.PUT("/events/:id", handlers.UpdateEvent)
		admin.DELETE("/events/:id", handlers.DeleteEvent)

		admin.POST("/import/json", handlers.ImportJSON)
		admin.GET("/import/db", handlers.ImportDB)
		admin.POST("/import/db", handlers.ImportDB)

		admin.POST("/corrections/overrides", handlers.CreateOverride)
		admin.DELETE("/corrections/overrides/:id", handlers.DeleteOverride)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
