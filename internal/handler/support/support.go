package support

import (
	"cryptosignals/internal/model"
	"cryptosignals/internal/service"
	"cryptosignals/pkg/errors"
	"cryptosignals/pkg/errors/ecode"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/response"
	"cryptosignals/pkg/validator"

	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	service service.SupportService
}

func NewSupportHandler(service service.SupportService) *SupportHandler {
	return &SupportHandler{service: service}
}

func (h *SupportHandler) FAQ() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, h.service.FAQ(ctx))
	}
}

// @Summary		联系客服
// @description	未配置 SMTP 时只记录日志，sent 为 false
// @Accept			json
// @Produce		json
// @Param			body	body		model.ContactReq	true	"联系表单"
// @Success		200		{object}	response.ApiResponse{data=model.ContactRes}
// @Router			/api/v1/support/contact [post]
func (h *SupportHandler) Contact() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.ContactReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		res, err := h.service.Contact(ctx, req)
		if err != nil {
			logger.Errorf("发送客服邮件失败: %v", err)
			response.JSON(ctx, errors.Wrap(err, ecode.Unknown, "message could not be sent, please try again later"), nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
