package plan

import (
	"cryptosignals/internal/service"
	"cryptosignals/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	service service.PlanService
}

func NewPlanHandler(service service.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// @Summary		订阅计划列表
// @Produce		json
// @Success		200	{object}	response.ApiResponse{data=[]model.Plan}
// @Router			/api/v1/plan/list [get]
func (h *PlanHandler) PlanList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, h.service.Plans(ctx))
	}
}

// @Summary		各计划的历史统计
// @Produce		json
// @Success		200	{object}	response.ApiResponse{data=[]model.PlanStatisticsRes}
// @Router			/api/v1/plan/statistics [get]
func (h *PlanHandler) PlanStatistics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, h.service.Statistics(ctx))
	}
}

func (h *PlanHandler) PlanPerformance() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, h.service.Performance(ctx))
	}
}
