package router

import (
	"github.com/gin-gonic/gin"

	"acta_diurna/internal/handler"
	"acta_diurna/internal/middleware"
	"acta_diurna/internal/service"
)

// Services 路由依赖的全部业务服务，由 main 构造注入
type Services struct {
	Users        *service.UserService
	Email        *service.EmailService
	Invitations  *service.InvitationService
	Contributors *service.ContributorService
	Stories      *service.StoryService
	Digests      *service.DigestService
	Delivery     *service.DeliveryService
}

func InitRouter(s Services) *gin.Engine {
	r := gin.Default()

	user := handler.NewUserHandler(s.Users)
	email := handler.NewEmailHandler(s.Email)
	invitation := handler.NewInvitationHandler(s.Invitations)
	contributor := handler.NewContributorHandler(s.Contributors)
	story := handler.NewStoryHandler(s.Stories)
	digest := handler.NewDigestHandler(s.Digests, s.Delivery)

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 邀请相关接口
	invitationGroup := r.Group("/api/invitations")
	invitationGroup.Use(middleware.AuthMiddleware())
	{
		invitationGroup.POST("/", invitation.Send)
		invitationGroup.GET("/", invitation.List)
		invitationGroup.POST("/:id/accept", invitation.Accept)
		invitationGroup.POST("/:id/decline", invitation.Decline)
		invitationGroup.POST("/:id/cancel", invitation.Cancel)
	}

	// 供稿人相关接口
	contributorGroup := r.Group("/api/contributors")
	contributorGroup.Use(middleware.AuthMiddleware())
	{
		contributorGroup.GET("/", contributor.List)
		contributorGroup.DELETE("/:id", contributor.Remove)
	}

	// 投稿相关接口
	storyGroup := r.Group("/api/stories")
	storyGroup.Use(middleware.AuthMiddleware())
	{
		storyGroup.PUT("/draft", story.SaveDraft)
		storyGroup.GET("/draft", story.GetDraft)
		storyGroup.POST("/submit", story.Submit)
		storyGroup.POST("/:id/images", story.AttachMedia)
		storyGroup.GET("/images/:id", story.FetchMedia)
		storyGroup.GET("/mine", story.ListMine)
	}

	// 周报相关接口
	digestGroup := r.Group("/api/digest")
	digestGroup.Use(middleware.AuthMiddleware())
	{
		digestGroup.GET("/current", digest.Current)
		digestGroup.GET("/archive", digest.Archive)
		digestGroup.GET("/:week", digest.ByWeek)
		digestGroup.POST("/:week/regenerate", digest.Regenerate)
		digestGroup.POST("/:week/deliver", digest.Deliver)
	}

	return r
}
