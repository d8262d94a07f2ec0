package service

import (
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

var codeSubjects = map[string]string{
	"register": "Registration",
	"reset":    "Password Reset",
}

// SendCode 发送验证码。先写 pending，邮件发出后再晋升为 confirmed，
// 发送失败时清掉 pending 键。
func (s *EmailService) SendCode(scope, email string) error {
	subject, ok := codeSubjects[scope]
	if !ok {
		return pkg.ErrValidation
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.rds.SetCodePending(scope, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, subject+" - Acta Diurna", html); err != nil {
		_ = s.rds.DeleteCodePending(scope, email)
		return err
	}

	if err = s.rds.PromoteCode(scope, email); err != nil {
		_ = s.rds.DeleteCodePending(scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验验证码，匹配即一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetConfirmedCode(scope, email)
	if err != nil {
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err := s.rds.DeleteConfirmedCode(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
