package api

import (
	"net/http"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything SetupRoutes wires into handlers.
type Services struct {
	Auth       service.AuthService
	Program    service.ProgramService
	Planner    service.PlannerService
	Routine    service.RoutineService
	Exercise   service.ExerciseService
	Enrollment service.EnrollmentService
	Homework   service.HomeworkService
	Progress   service.ProgressService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svcs Services) {
	authHandler := NewAuthHandler(svcs.Auth)
	programHandler := NewProgramHandler(svcs.Program)
	plannerHandler := NewPlannerHandler(svcs.Planner)
	routineHandler := NewRoutineHandler(svcs.Routine)
	exerciseHandler := NewExerciseHandler(svcs.Exercise)
	enrollmentHandler := NewEnrollmentHandler(svcs.Enrollment)
	homeworkHandler := NewHomeworkHandler(svcs.Homework)
	progressHandler := NewProgressHandler(svcs.Progress)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Shared (any authenticated user) ---
		protected.GET("/programs", programHandler.ListCatalog)
		protected.GET("/programs/:programId", programHandler.GetProgram)
		protected.GET("/exercises/:exerciseId/media", exerciseHandler.GetMediaDownloadURL)

		// --- Coach Routes ---
		coach := protected.Group("/coach")
		coach.Use(RoleMiddleware(domain.RoleCoach))
		{
			// Programs
			coach.POST("/programs", programHandler.CreateProgram)
			coach.GET("/programs", programHandler.GetCoachPrograms)
			coach.PUT("/programs/:programId", programHandler.UpdateProgram)

			// Planner grid
			coach.GET("/programs/:programId/plan", plannerHandler.GetProgramPlan)
			coach.POST("/programs/:programId/phases", plannerHandler.CreatePhase)
			coach.POST("/programs/:programId/phases/:phaseNumber/days", plannerHandler.AddDayToPhase)
			coach.DELETE("/programs/:programId/phases/:phaseNumber", plannerHandler.DeletePhase)

			// Day blueprints
			coach.PATCH("/blueprints/:blueprintId", plannerHandler.UpdateBlueprint)
			coach.DELETE("/blueprints/:blueprintId", plannerHandler.DeleteDay)
			coach.POST("/blueprints/:blueprintId/blocks", plannerHandler.AssignRoutineBlock)
			coach.DELETE("/blueprints/:blueprintId/blocks", plannerHandler.ClearRoutineBlocks)
			coach.DELETE("/blueprints/:blueprintId/blocks/:blockId", plannerHandler.UnassignRoutineBlock)
			coach.PUT("/blueprints/:blueprintId/blocks/order", plannerHandler.ReorderRoutineBlocks)
			coach.POST("/blueprints/:blueprintId/sections", plannerHandler.AddSection)
			coach.POST("/blueprints/:blueprintId/sections/reorder", plannerHandler.ReorderSections)
			coach.PUT("/blueprints/:blueprintId/sections/:sectionId", plannerHandler.UpdateSection)
			coach.DELETE("/blueprints/:blueprintId/sections/:sectionId", plannerHandler.DeleteSection)

			// Routine blocks
			coach.POST("/routine-blocks", routineHandler.CreateRoutineBlock)
			coach.GET("/routine-blocks", routineHandler.GetCoachRoutineBlocks)
			coach.GET("/routine-blocks/:blockId", routineHandler.GetRoutineBlock)
			coach.PUT("/routine-blocks/:blockId", routineHandler.UpdateRoutineBlock)
			coach.DELETE("/routine-blocks/:blockId", routineHandler.DeleteRoutineBlock)
			coach.POST("/routine-blocks/:blockId/items", routineHandler.AddRoutineItem)
			coach.DELETE("/routine-blocks/:blockId/items/:itemId", routineHandler.DeleteRoutineItem)
			coach.PUT("/routine-blocks/:blockId/items/order", routineHandler.ReorderRoutineItems)

			// Exercise library
			coach.POST("/exercises", exerciseHandler.CreateExercise)
			coach.GET("/exercises", exerciseHandler.SearchExercises)
			coach.PUT("/exercises/:exerciseId", exerciseHandler.UpdateExercise)
			coach.DELETE("/exercises/:exerciseId", exerciseHandler.DeleteExercise)
			coach.POST("/exercises/:exerciseId/media", exerciseHandler.RequestMediaUpload)

			// Member management
			coach.GET("/programs/:programId/enrollments", enrollmentHandler.GetProgramEnrollments)
			coach.GET("/programs/:programId/enrollments/stats", enrollmentHandler.GetMemberStats)
			coach.GET("/programs/:programId/enrollments/expiring", enrollmentHandler.GetExpiringEnrollments)
			coach.PATCH("/enrollments/:enrollmentId/status", enrollmentHandler.UpdateStatus)
			coach.PATCH("/enrollments/:enrollmentId/start-date", enrollmentHandler.UpdateStartDate)
			coach.PATCH("/enrollments/:enrollmentId/end-date", enrollmentHandler.UpdateEndDate)
			coach.POST("/enrollments/:enrollmentId/extend", enrollmentHandler.Extend)

			// Homework review
			coach.GET("/programs/:programId/homework", homeworkHandler.GetHomeworkSubmissions)
			coach.GET("/programs/:programId/homework/stats", homeworkHandler.GetHomeworkStats)
			coach.PATCH("/workout-logs/:logId/comment", homeworkHandler.UpdateCoachComment)
			coach.POST("/workout-logs/:logId/check", homeworkHandler.ToggleCoachCheck)

			// Member performance, coach view
			coach.GET("/programs/:programId/members/:memberId/progress", progressHandler.GetMemberProgressForCoach)
		}

		// --- Member Routes ---
		member := protected.Group("/member")
		member.Use(RoleMiddleware(domain.RoleMember))
		{
			member.POST("/enrollments", enrollmentHandler.Enroll)

			member.POST("/workout-logs", homeworkHandler.CreateWorkoutLog)
			member.GET("/workout-logs", homeworkHandler.GetMemberLogs)
			member.PUT("/workout-logs/:logId", homeworkHandler.UpdateWorkoutLog)
			member.DELETE("/workout-logs/:logId", homeworkHandler.DeleteWorkoutLog)

			member.GET("/progress", progressHandler.GetMemberProgress)
			member.GET("/progress/trend", progressHandler.GetExerciseTrend)
		}
	}
}
