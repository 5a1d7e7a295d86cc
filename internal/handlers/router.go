package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

const serviceName = "edunexus-service"

type HandlerManager struct {
	serviceManager       services.ServiceManager
	authHandler          *AuthHandler
	classroomHandler     *ClassroomHandler
	noteHandler          *NoteHandler
	questionHandler      *QuestionHandler
	communityHandler     *CommunityHandler
	notebookHandler      *NotebookHandler
	teacherAccessHandler *TeacherAccessHandler
	dashboardHandler     *DashboardHandler
	authMiddleware       *CasdoorAuthMiddleware
}

// NewHandlerManager wires handlers to an initialized service manager.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier IdentityVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:       serviceManager,
		authHandler:          NewAuthHandler(serviceManager.Auth(), logger),
		classroomHandler:     NewClassroomHandler(serviceManager.Classroom(), serviceManager.Subject(), logger),
		noteHandler:          NewNoteHandler(serviceManager.Note(), logger),
		questionHandler:      NewQuestionHandler(serviceManager.Question(), logger),
		communityHandler:     NewCommunityHandler(serviceManager.Announcement(), logger),
		notebookHandler:      NewNotebookHandler(serviceManager.Notebook(), logger),
		teacherAccessHandler: NewTeacherAccessHandler(serviceManager.TeacherAccess(), logger),
		dashboardHandler:     NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		authMiddleware:       NewCasdoorAuthMiddleware(verifier, serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes under prefix (normally /api/v1)
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, prefix string) {
	requireTeacher := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher)

	api := router.Group(prefix)

	// Profile creation happens before a profile exists.
	api.POST("/auth/profile", hm.authMiddleware.OptionalAuthMiddleware(), hm.authHandler.CreateProfile)

	v1 := api.Group("")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.GET("/auth/me", hm.authHandler.Me)

		classrooms := v1.Group("/classrooms")
		{
			classrooms.POST("", requireTeacher, hm.classroomHandler.CreateClassroom)
			classrooms.POST("/join", hm.classroomHandler.JoinClassroom)
			classrooms.GET("", hm.classroomHandler.ListClassrooms)
			classrooms.DELETE("/:id", requireTeacher, hm.classroomHandler.DeleteClassroom)
		}

		subjects := v1.Group("/subjects")
		{
			subjects.POST("", requireTeacher, hm.classroomHandler.CreateSubject)
			subjects.GET("/classroom/:classroom_id", hm.classroomHandler.ListSubjects)
			subjects.DELETE("/:id", requireTeacher, hm.classroomHandler.DeleteSubject)
			subjects.POST("/:id/chapters", requireTeacher, hm.classroomHandler.CreateChapter)
			subjects.GET("/:id/chapters", hm.classroomHandler.ListChapters)
		}

		v1.DELETE("/chapters/:id", requireTeacher, hm.classroomHandler.DeleteChapter)

		notes := v1.Group("/notes")
		{
			notes.GET("/chapter/:chapter_id", hm.noteHandler.ListChapterNotes)
			notes.GET("/my-notes", hm.noteHandler.MyNotes)
			notes.PATCH("/:id/approval", requireTeacher, hm.noteHandler.SetApproval)
			notes.DELETE("/:id", hm.noteHandler.DeleteNote)
		}

		v1.POST("/upload/chapter/:chapter_id/note", MaxBodyMiddleware(MaxUploadSize+1<<20), hm.noteHandler.UploadNote)

		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("/chapter/:chapter_id", hm.questionHandler.ListChapterQuestions)
			questions.GET("/chapter/:chapter_id/community", hm.questionHandler.ListCommunityQuestions)
			questions.GET("/my-questions", hm.questionHandler.MyQuestions)
			questions.POST("/:id/answer", requireTeacher, hm.questionHandler.AnswerQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		community := v1.Group("/community")
		{
			community.POST("/announcements", requireTeacher, hm.communityHandler.CreateAnnouncement)
			community.GET("/chapter/:chapter_id/announcements", hm.communityHandler.ListChapterAnnouncements)
			community.GET("/all", hm.communityHandler.ListAllAnnouncements)
		}

		notebook := v1.Group("/notebook/chapter/:chapter_id")
		{
			notebook.POST("/query", hm.notebookHandler.Query)
			notebook.GET("/recommendations", hm.notebookHandler.Recommendations)
		}

		teacherAccess := v1.Group("/teacher-access")
		teacherAccess.Use(requireTeacher)
		{
			teacherAccess.POST("", hm.teacherAccessHandler.AssignTeacher)
			teacherAccess.GET("/subject/:subject_id", hm.teacherAccessHandler.ListSubjectTeachers)
			teacherAccess.DELETE("/:id", hm.teacherAccessHandler.RemoveTeacher)
		}

		dashboard := v1.Group("/dashboard")
		dashboard.Use(requireTeacher)
		{
			dashboard.GET("/teacher", hm.dashboardHandler.GetTeacherDashboard)
			dashboard.GET("/teacher/export", hm.dashboardHandler.ExportTeacherDashboard)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": serviceName,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
}
