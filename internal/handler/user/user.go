package user

import (
	"cryptosignals/internal/model"
	"cryptosignals/internal/service"
	"cryptosignals/internal/session"
	"cryptosignals/pkg/errors"
	"cryptosignals/pkg/errors/ecode"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/response"
	"cryptosignals/pkg/validator"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary		用户登录
// @Accept			json
// @Produce		json
// @Param			body	body		model.UserLoginReq	true	"邮箱和密码"
// @Success		200		{object}	response.ApiResponse{data=model.UserLoginRes}
// @Router			/api/v1/auth/login [post]
func (handler *UserHandler) UserLogin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserLoginReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.SignIn(ctx, req.Email, req.Password)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.UserLoginErr, service.ErrAuth.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		用户注册接口
// @Accept			json
// @Produce		json
// @Param			body	body		model.UserRegisterReq	true	"名称、邮箱和密码"
// @Success		200		{object}	response.ApiResponse{data=model.UserLoginRes}
// @Router			/api/v1/auth/register [post]
func (handler *UserHandler) UserRegister() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// 读取请求参数
		var req model.UserRegisterReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		res, err := handler.service.SignUp(ctx, req)
		if err != nil {
			response.JSON(ctx, errors.WithCode(ecode.UserLoginErr, service.ErrAuth.Error()), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		获取用户详情
// @description	用来获取当前登陆用户的详细信息
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=model.UserInfo}
// @Router			/api/v1/user/info [get]
func (handler *UserHandler) UserGetInfo() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := session.FromContext(ctx)
		res, err := handler.service.UserGetInfo(ctx, user.ID)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.NotFoundErr, "未找到用户信息"), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

func (handler *UserHandler) UserLogout() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := handler.service.Logout(ctx, session.IDFromContext(ctx)); err != nil {
			logger.Errorf("退出登录失败: %v", err)
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "logout failed"), nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}
