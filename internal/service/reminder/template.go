package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/urlnorm"
)

const (
	defaultTitle    = "정책"
	defaultDeadline = "마감일 미정"
)

var d7Template = template.Must(template.New("d7").Parse(`<div style="font-family:Arial,Helvetica,sans-serif;line-height:1.6;color:#333;">
  <h2 style="color:#2c7be5;">📢 신청 마감 7일 전 알림</h2>
  <p><strong>{{.Title}}</strong>의 신청 마감일이 <strong>{{.Deadline}}</strong>로 일주일 남았습니다.</p>
  <p>아래 버튼을 눌러 상세 내용을 확인하시고, 기한 내 신청을 완료하세요.</p>
  <p style="margin:24px 0;">{{if .Link}}<a href="{{.Link}}" target="_blank" style="background:#2c7be5;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none;display:inline-block;">신청하러 가기</a>{{else}}<span style="color:#999;">신청 링크 정보 없음</span>{{end}}</p>
  <hr style="margin:24px 0;border:none;border-top:1px solid #eee;" />
  <small style="color:#777;">
    본 메일은 {{.Service}} 알림 서비스에 의해 자동 발송되었습니다.<br/>
    알림을 원치 않으시면 [즐겨찾기]에서 알림을 해제하세요.
  </small>
</div>`))

type d7View struct {
	Title    string
	Deadline string
	Link     string
	Service  string
}

// Render builds the notification for one item. Values are escaped by the
// template; links that are not http(s) fall back to the placeholder.
func Render(item core.ReminderItem) (core.Notification, error) {
	view := d7View{
		Title:    strings.TrimSpace(item.Title),
		Deadline: defaultDeadline,
		Service:  core.BokjiName,
	}
	if view.Title == "" {
		view.Title = defaultTitle
	}
	if !item.Deadline.IsZero() {
		view.Deadline = item.Deadline.Format(dateLayout)
	}
	if urlnorm.IsHTTP(item.Link) {
		view.Link = strings.TrimSpace(item.Link)
	}

	var buf bytes.Buffer
	if err := d7Template.Execute(&buf, view); err != nil {
		return core.Notification{}, fmt.Errorf("failed to render reminder: %w", err)
	}

	return core.Notification{
		To:      item.Email,
		Subject: "신청 마감 7일 전: " + view.Title,
		HTML:    buf.String(),
	}, nil
}
