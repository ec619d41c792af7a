package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/storage"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type HandlerManager struct {
	directoryHandler  *DirectoryHandler
	classHandler      *ClassHandler
	delegationHandler *DelegationHandler
	grantHandler      *GrantHandler
	reportHandler     *ReportHandler
	queryHandler      *QueryHandler
	identityHandler   *IdentityHandler
	sessionHandler    *SessionHandler
	rosterHandler     *RosterHandler
	auditHandler      *AuditHandler
	uploadHandler     *UploadHandler
	authMiddleware    *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authenticator auth.Authenticator,
	sessions auth.SessionStore,
	accountRepo repositories.AccountRepository,
	blobStore storage.BlobStore,
	logger utils.Logger,
) *HandlerManager {
	authMiddleware := NewAuthMiddleware(authenticator, sessions, accountRepo)

	return &HandlerManager{
		directoryHandler:  NewDirectoryHandler(serviceManager.Directory(), logger),
		classHandler:      NewClassHandler(serviceManager.Class(), logger),
		delegationHandler: NewDelegationHandler(serviceManager.Delegation(), logger),
		grantHandler:      NewGrantHandler(serviceManager.Grant(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), logger),
		queryHandler:      NewQueryHandler(serviceManager.Query(), logger),
		identityHandler:   NewIdentityHandler(serviceManager.Identity(), logger),
		sessionHandler:    NewSessionHandler(authenticator, sessions, accountRepo, logger),
		rosterHandler:     NewRosterHandler(serviceManager.Roster(), logger),
		auditHandler:      NewAuditHandler(serviceManager.Audit(), logger),
		uploadHandler:     NewUploadHandler(blobStore, logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Session login is the only unauthenticated endpoint
	router.POST("/api/v1/sessions", hm.sessionHandler.Login)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		v1.DELETE("/sessions", hm.sessionHandler.Logout)

		// Directory routes
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.directoryHandler.CreateAccount)
			accounts.GET("", hm.directoryHandler.ListAccounts)
			accounts.GET("/:id", hm.directoryHandler.GetAccount)
			accounts.PUT("/:id", hm.directoryHandler.UpdateAccount)
			accounts.PUT("/:id/role", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.directoryHandler.SetRole)
		}
		v1.GET("/mentors", hm.directoryHandler.ListMentors)

		mentees := v1.Group("/mentees")
		{
			mentees.POST("", hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin), hm.directoryHandler.CreateMentee)
			mentees.GET("", hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin), hm.directoryHandler.ListMentees)
			mentees.GET("/check-enrollment", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.directoryHandler.CheckEnrollment)
			mentees.GET("/:id", hm.directoryHandler.GetMenteeProfile)
			mentees.PUT("/:id", hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin), hm.directoryHandler.UpdateMenteeProfile)
		}

		// Class routes - mentors only
		classes := v1.Group("/classes")
		classes.Use(hm.authMiddleware.RequireRole(models.RoleMentor))
		{
			classes.POST("", hm.classHandler.CreateClass)
			classes.GET("", hm.classHandler.ListMyClasses)
			classes.GET("/:id", hm.classHandler.GetClass)
			classes.PUT("/:id", hm.classHandler.UpdateClass)
			classes.DELETE("/:id", hm.classHandler.DeleteClass)
		}

		// Delegation routes - mentors request slots for themselves,
		// primary assignment stays with admins
		delegation := v1.Group("/delegation")
		{
			delegation.POST("/assign", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.delegationHandler.AssignPrimaryMentor)
			delegation.POST("/verify", hm.authMiddleware.RequireRole(models.RoleMentor), hm.delegationHandler.VerifyDelegation)
			delegation.POST("/commit", hm.authMiddleware.RequireRole(models.RoleMentor), hm.delegationHandler.CommitDelegation)
			delegation.POST("/release", hm.authMiddleware.RequireRole(models.RoleMentor), hm.delegationHandler.ReleaseDelegation)

			delegation.GET("/mentees", hm.authMiddleware.RequireRole(models.RoleMentor), hm.delegationHandler.ListMyMentees)
			delegation.GET("/mentees/:slot", hm.authMiddleware.RequireRole(models.RoleMentor), hm.delegationHandler.ListMySlotMentees)
		}

		// Grant routes
		grants := v1.Group("/grants")
		{
			grants.POST("", hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin), hm.grantHandler.IssueGrant)
			grants.POST("/bulk", hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin), hm.grantHandler.IssueBulkGrant)

			grants.GET("/me", hm.authMiddleware.RequireRole(models.RoleMentee), hm.grantHandler.GetMyEditWindow)
			grants.PUT("/me/profile", hm.authMiddleware.RequireRole(models.RoleMentee), hm.grantHandler.SaveMyProfile)
		}

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.POST("", hm.authMiddleware.RequireRole(models.RoleMentee), hm.reportHandler.SubmitReport)
			reports.GET("/mine", hm.authMiddleware.RequireRole(models.RoleMentee), hm.reportHandler.ListMyReports)

			reports.GET("/inbox", hm.authMiddleware.RequireRole(models.RoleMentor), hm.reportHandler.ListInbox)
			reports.GET("/inbox/stats", hm.authMiddleware.RequireRole(models.RoleMentor), hm.reportHandler.GetInboxStats)
			reports.POST("/:id/review", hm.authMiddleware.RequireRole(models.RoleMentor), hm.reportHandler.ReviewReport)
			reports.PUT("/:id/feedback", hm.authMiddleware.RequireRole(models.RoleMentor), hm.reportHandler.UpdateFeedback)
			reports.POST("/:id/viewed", hm.authMiddleware.RequireRole(models.RoleMentor), hm.reportHandler.MarkViewed)

			reports.GET("/:id", hm.reportHandler.GetReport)
		}

		// Query routes
		queries := v1.Group("/queries")
		{
			queries.POST("", hm.authMiddleware.RequireRole(models.RoleMentee), hm.queryHandler.AskQuery)
			queries.GET("/mine", hm.authMiddleware.RequireRole(models.RoleMentee), hm.queryHandler.ListMyQueries)

			queries.GET("/inbox", hm.authMiddleware.RequireRole(models.RoleMentor), hm.queryHandler.ListInbox)
			queries.POST("/:id/answer", hm.authMiddleware.RequireRole(models.RoleMentor), hm.queryHandler.AnswerQuery)

			queries.GET("/:id", hm.queryHandler.GetQuery)
		}

		// Identity vault routes - staff only, mentees never hold links
		identity := v1.Group("/identity")
		identity.Use(hm.authMiddleware.RequireRole(models.RoleMentor, models.RoleAdmin))
		{
			identity.POST("/link", hm.identityHandler.LinkIdentity)
			identity.GET("/link", hm.identityHandler.GetLink)
			identity.DELETE("/link", hm.identityHandler.Unlink)
			identity.POST("/switch", hm.identityHandler.Switch)
		}

		// Export routes - mentors only
		exports := v1.Group("/exports")
		exports.Use(hm.authMiddleware.RequireRole(models.RoleMentor))
		{
			exports.GET("/roster", hm.rosterHandler.ExportRoster)
			exports.GET("/reports", hm.rosterHandler.ExportReportSummary)
		}

		// Import routes - admins only
		v1.POST("/imports/roster", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.rosterHandler.ImportRoster)

		// Audit routes - admins only
		v1.GET("/audit", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.auditHandler.ListAuditEvents)

		// Upload routes
		uploads := v1.Group("/uploads")
		{
			uploads.POST("", hm.uploadHandler.UploadArtifact)
			uploads.GET("/resolve", hm.uploadHandler.ResolveArtifact)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "mentorship-service",
		})
	})
}
