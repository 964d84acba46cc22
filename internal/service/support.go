package service

import (
	"context"
	"fmt"

	"cryptosignals/internal/model"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/mail"
)

type SupportService interface {
	FAQ(ctx context.Context) []model.FaqItem
	Contact(ctx context.Context, req model.ContactReq) (model.ContactRes, error)
}

type supportService struct {
	faq    []model.FaqItem
	sender mail.Sender // 未配置 SMTP 时为 nil，只记录日志
	inbox  string
}

func NewSupportService(faq []model.FaqItem, sender mail.Sender, inbox string) *supportService {
	return &supportService{faq: faq, sender: sender, inbox: inbox}
}

func (s *supportService) FAQ(_ context.Context) []model.FaqItem {
	return append([]model.FaqItem(nil), s.faq...)
}

func (s *supportService) Contact(_ context.Context, req model.ContactReq) (res model.ContactRes, err error) {
	logger.Info("support request",
		logger.Pair("email", req.Email),
		logger.Pair("subject", req.Subject))
	if s.sender == nil || s.inbox == "" {
		return res, nil
	}
	subject := fmt.Sprintf("[%s] support request from %s", req.Subject, req.Name)
	body := fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\n%s\n", req.Name, req.Email, req.Subject, req.Message)
	if err = s.sender.Send(s.inbox, req.Email, subject, body); err != nil {
		return res, err
	}
	res.Sent = true
	return res, nil
}
