package pkg

import (
	"crypto/tls"
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"acta_diurna/internal/model"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件人邮箱
	Password string // 授权码/密码
	From     string // 显示的发件人，可与 Username 相同
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	return d.DialAndSend(m)
}

func EmailCodeHTML(subject, code string, ttl time.Duration) string {
	minM := int(ttl.Minutes())
	return fmt.Sprintf(`<p>Hello,</p><p>Your verification code for <b>%s</b> is <b style="font-size:18px;">%s</b>.</p><p>It expires in %d minutes. Do not share it with anyone.</p>`, subject, code, minM)
}

// InvitationHTML 邀请邮件正文
func InvitationHTML(fromName, message string) string {
	var b strings.Builder
	b.WriteString(`<h2>Acta Diurna</h2>`)
	b.WriteString(fmt.Sprintf(`<p><b>%s</b> has invited you to join their weekly chronicle as a contributor.</p>`, html.EscapeString(fromName)))
	if message != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Personal message:</strong> %s</p>`, html.EscapeString(message)))
	}
	b.WriteString(`<p>Sign in and accept the invitation to start sharing stories with each other every week.</p>`)
	return b.String()
}

// DigestHTML 把周报拼成一封 HTML 邮件，头条在前
func DigestHTML(d *model.Digest) (string, error) {
	stories, err := d.DecodeStories()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<h1>Acta Diurna - Weekly Chronicle</h1>`)
	b.WriteString(fmt.Sprintf(`<p>Week %s</p>`, html.EscapeString(d.EffectiveWeek)))
	if d.EffectiveWeek != d.RequestedWeek {
		b.WriteString(fmt.Sprintf(`<p><em>No stories were submitted for week %s; showing the most recent week instead.</em></p>`, html.EscapeString(d.RequestedWeek)))
	}
	if len(stories) == 0 {
		b.WriteString(`<p>No stories this week from your circle. Encourage your contributors to share!</p>`)
		return b.String(), nil
	}
	b.WriteString(`<ul>`)
	for _, s := range stories {
		b.WriteString(`<li>`)
		b.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(s.Title)))
		b.WriteString(fmt.Sprintf(`<p><em>%s</em></p>`, html.EscapeString(s.Headline)))
		b.WriteString(fmt.Sprintf(`<p><strong>By:</strong> %s</p>`, html.EscapeString(s.AuthorName)))
		b.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(s.Body)))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String(), nil
}
