package html

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"time"

	"github.com/sonnes/dakiya/core"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime":     formatTime,
		"formatDuration": formatDuration,
		"isoTime":        isoTime,
		"relativeTime":   core.RelativeTime,
		"senderBorder":   senderBorder,
		"senderBadge":    senderBadge,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04:05 PM")
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// senderHue picks a Tailwind color family for a sender. Known agents get
// fixed colors.
func senderHue(sender string) string {
	switch sender {
	case "claude":
		return "orange"
	case "codex":
		return "emerald"
	}
	hues := []string{"blue", "violet", "pink", "cyan", "amber"}
	h := fnv.New32a()
	h.Write([]byte(sender))
	return hues[h.Sum32()%uint32(len(hues))]
}

// The full class strings are spelled out so the Tailwind CDN picks them up.
var (
	borderClasses = map[string]string{
		"orange":  "border-l-4 border-l-orange-500",
		"emerald": "border-l-4 border-l-emerald-500",
		"blue":    "border-l-4 border-l-blue-500",
		"violet":  "border-l-4 border-l-violet-500",
		"pink":    "border-l-4 border-l-pink-500",
		"cyan":    "border-l-4 border-l-cyan-500",
		"amber":   "border-l-4 border-l-amber-500",
	}
	badgeClasses = map[string]string{
		"orange":  "text-orange-700 dark:text-orange-400 bg-orange-50 dark:bg-orange-950",
		"emerald": "text-emerald-700 dark:text-emerald-400 bg-emerald-50 dark:bg-emerald-950",
		"blue":    "text-blue-700 dark:text-blue-400 bg-blue-50 dark:bg-blue-950",
		"violet":  "text-violet-700 dark:text-violet-400 bg-violet-50 dark:bg-violet-950",
		"pink":    "text-pink-700 dark:text-pink-400 bg-pink-50 dark:bg-pink-950",
		"cyan":    "text-cyan-700 dark:text-cyan-400 bg-cyan-50 dark:bg-cyan-950",
		"amber":   "text-amber-700 dark:text-amber-400 bg-amber-50 dark:bg-amber-950",
	}
)

func senderBorder(sender string) string { return borderClasses[senderHue(sender)] }
func senderBadge(sender string) string  { return badgeClasses[senderHue(sender)] }
