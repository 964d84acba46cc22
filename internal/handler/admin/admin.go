package admin

import (
	"strings"

	"cryptosignals/internal/dao"
	"cryptosignals/internal/model"
	"cryptosignals/internal/service"
	"cryptosignals/internal/session"
	domain "cryptosignals/internal/signal"
	"cryptosignals/pkg/errors"
	"cryptosignals/pkg/errors/ecode"
	"cryptosignals/pkg/response"
	"cryptosignals/pkg/validator"

	"github.com/gin-gonic/gin"
)

// AdminHandler 用户和计划管理，信号的增删改在 signal 包
type AdminHandler struct {
	users service.UserService
	plans service.PlanService
}

func NewAdminHandler(users service.UserService, plans service.PlanService) *AdminHandler {
	return &AdminHandler{users: users, plans: plans}
}

func (h *AdminHandler) UserList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.users.ListUsers(ctx)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "获取用户列表失败"), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		设置用户角色和计划
// @description	用户下次登录后生效
// @Accept			json
// @Produce		json
// @Param			Authorization	header		string				true	"Bearer 管理员令牌"
// @Param			body			body		model.UserRoleReq	true	"邮箱、角色、计划"
// @Success		200				{object}	response.ApiResponse
// @Router			/api/v1/admin/user/role [post]
func (h *AdminHandler) UserSetRole() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserRoleReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		if err := h.users.SetUserRoleAndPlan(ctx, req); err != nil {
			if errors.Is(err, dao.ErrUserNotFound) {
				response.JSON(ctx, errors.WithCode(ecode.NotFoundErr, "user not found"), nil)
				return
			}
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "设置用户角色失败"), nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}

// @Summary		删除用户
// @description	同时删除该用户的所有会话
// @Accept			json
// @Produce		json
// @Param			Authorization	header		string				true	"Bearer 管理员令牌"
// @Param			body			body		model.UserDeleteReq	true	"用户邮箱"
// @Success		200				{object}	response.ApiResponse
// @Router			/api/v1/admin/user/delete [post]
func (h *AdminHandler) UserDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.UserDeleteReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		actor, _ := session.FromContext(ctx)
		if strings.EqualFold(strings.TrimSpace(req.Email), actor.Email) {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "cannot delete the signed-in account"), nil)
			return
		}
		if err := h.users.DeleteUser(ctx, req.Email); err != nil {
			if errors.Is(err, dao.ErrUserNotFound) {
				response.JSON(ctx, errors.WithCode(ecode.NotFoundErr, "user not found"), nil)
				return
			}
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "删除用户失败"), nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}

// @Summary		修改计划包含的币种
// @Accept			json
// @Produce		json
// @Param			Authorization	header		string				true	"Bearer 管理员令牌"
// @Param			body			body		model.PlanCoinsReq	true	"计划和币种列表"
// @Success		200				{object}	response.ApiResponse{data=[]model.Plan}
// @Router			/api/v1/admin/plan/coins [post]
func (h *AdminHandler) PlanCoins() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.PlanCoinsReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		res, err := h.plans.UpdatePlanCoins(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				response.JSON(ctx, errors.WithCode(ecode.ValidateErr, err.Error()), nil)
				return
			}
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "修改计划失败"), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
