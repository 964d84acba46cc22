package signal

import (
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

type SignalHandler struct {
	signalService service.SignalService
}

func NewSignalHandler(signalService service.SignalService) *SignalHandler {
	return &SignalHandler{
		signalService: signalService,
	}
}

// 领域错误转换为接口错误码
func apiErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return errors.WithCode(ecode.ValidateErr, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errors.WithCode(ecode.NotFoundErr, err.Error())
	case errors.Is(err, domain.ErrLoading):
		return errors.WithCode(ecode.ValidateErr, err.Error())
	}
	return errors.Wrap(err, ecode.Unknown, "接口调用失败")
}

// @Summary		信号列表
// @description	按当前用户的订阅等级过滤，支持状态和币种搜索
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Param			status			query		string	false	"all/open/closed"
// @Param			search			query		string	false	"币种关键字"
// @Success		200				{object}	response.ApiResponse{data=model.SignalListRes}
// @Router			/api/v1/signal/list [get]
func (sh *SignalHandler) SignalGetList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SignalListReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		user, _ := session.FromContext(ctx)
		res, err := sh.signalService.List(ctx, user, req)
		if err != nil {
			response.JSON(ctx, apiErr(err), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

func (sh *SignalHandler) SignalGetOpen() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := session.FromContext(ctx)
		response.JSON(ctx, nil, sh.signalService.Open(ctx, user))
	}
}

func (sh *SignalHandler) SignalGetClosed() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := session.FromContext(ctx)
		response.JSON(ctx, nil, sh.signalService.Closed(ctx, user))
	}
}

// @Summary		仪表盘
// @Produce		json
// @Param			Authorization	header		string	true	"Bearer 用户令牌"
// @Success		200				{object}	response.ApiResponse{data=model.DashboardRes}
// @Router			/api/v1/signal/dashboard [get]
func (sh *SignalHandler) SignalDashboard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := session.FromContext(ctx)
		response.JSON(ctx, nil, sh.signalService.Dashboard(ctx, user))
	}
}

func (sh *SignalHandler) AdminSignalList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, sh.signalService.AdminList(ctx))
	}
}

// @Summary		创建信号
// @Accept			json
// @Produce		json
// @Param			Authorization	header		string					true	"Bearer 管理员令牌"
// @Param			body			body		model.SignalCreateReq	true	"信号内容"
// @Success		200				{object}	response.ApiResponse{data=signal.Signal}
// @Router			/api/v1/admin/signal/create [post]
func (sh *SignalHandler) AdminSignalCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SignalCreateReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		user, _ := session.FromContext(ctx)
		res, err := sh.signalService.Create(ctx, user, req)
		if err != nil {
			response.JSON(ctx, apiErr(err), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// @Summary		平仓
// @description	exit_price 可以是数字或字符串
// @Accept			json
// @Produce		json
// @Param			Authorization	header		string					true	"Bearer 管理员令牌"
// @Param			body			body		model.SignalCloseReq	true	"信号id和平仓价"
// @Success		200				{object}	response.ApiResponse{data=signal.Signal}
// @Router			/api/v1/admin/signal/close [post]
func (sh *SignalHandler) AdminSignalClose() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SignalCloseReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		user, _ := session.FromContext(ctx)
		res, err := sh.signalService.Close(ctx, user, req)
		if err != nil {
			response.JSON(ctx, apiErr(err), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

func (sh *SignalHandler) AdminSignalEdit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SignalEditReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		user, _ := session.FromContext(ctx)
		res, err := sh.signalService.Edit(ctx, user, req)
		if err != nil {
			response.JSON(ctx, apiErr(err), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

func (sh *SignalHandler) AdminSignalDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SignalDeleteReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		user, _ := session.FromContext(ctx)
		if err := sh.signalService.Delete(ctx, user, req); err != nil {
			response.JSON(ctx, apiErr(err), nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}
