package notify

import (
	"fmt"
	"strings"
	"time"

	"casewatch/internal/detect"
	"casewatch/internal/scrapers/casepage"

	"github.com/dustin/go-humanize"
)

const CheckedAtLayout = "2006/01/02 15:04:05"

const separator = "======================\n"

type Message struct {
	Snapshot     casepage.Snapshot
	Delta        detect.Delta
	CheckedAt    time.Time
	BoardLink    string
	MovementLink string
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// Text renders the notification body.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString("\n" + separator)
	b.WriteString(strings.ReplaceAll(m.Snapshot.Title, "19 ", "19\n") + "\n")
	b.WriteString(separator)

	b.WriteString("※ 환자 수 변동\n")
	fmt.Fprintf(&b, "▶ 확진환자 수 증가 : %s\n", comma(m.Delta.Confirm))
	fmt.Fprintf(&b, "▶ 격리해제 환자 수 증가 : %s\n", comma(m.Delta.Discharge))
	fmt.Fprintf(&b, "▶ 사망자 수 증가 : %s\n\n", comma(m.Delta.Death))

	counters := m.Snapshot.Counters
	b.WriteString("※ 현재 환자 수 현황\n")
	fmt.Fprintf(&b, "▶ 확진환자 수 : %s\n", comma(counters[0]))
	fmt.Fprintf(&b, "▶ 확진환자 격리해제 수 : %s\n", comma(counters[1]))
	fmt.Fprintf(&b, "▶ 사망자 수 : %s\n", comma(counters[2]))
	fmt.Fprintf(&b, "▶ 검사진행 수 : %s\n\n", comma(counters[3]))

	fmt.Fprintf(&b, "Check at: %s\n", m.CheckedAt.Format(CheckedAtLayout))
	b.WriteString(separator)
	fmt.Fprintf(&b, "▷ 더 보기 : %s\n", m.BoardLink)
	fmt.Fprintf(&b, "▷ 확진자 동선 : %s", m.MovementLink)
	return b.String()
}
