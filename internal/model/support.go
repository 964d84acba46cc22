package model

type FaqItem struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// 联系客服的表单
type ContactReq struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,oneof=account billing signals feedback other"`
	Message string `json:"message" binding:"required"`
}

type ContactRes struct {
	Sent bool `json:"sent"`
}
