// Package i18n translates user facing strings.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jeandeaual/go-locale"

	"tomato/internal/core/timekeeper"
	"tomato/internal/log"
)

// EnvLanguage forces the language regardless of the system locale.
const EnvLanguage = "TOMATO_LANG"

var (
	mu   sync.RWMutex
	lang string
)

var translations = map[string]map[string]string{
	// Status lines.
	"The tomato is waiting for you!": {
		"ko": "멋쟁이 토마토가 당신을 기다리고 있어요!",
	},
	"Ready! Click the tomato.": {
		"ko": "🔫준비 완료! 토마토를 클릭해주세요.",
	},
	"Focusing 🔥": {
		"ko": "집중 중🔥",
	},
	"Resting ☕": {
		"ko": "휴식 중☕",
	},
	"Paused": {
		"ko": "일시 정지",
	},
	"🎉 Done!": {
		"ko": "🎉완료!",
	},

	// Toasts.
	"😭 Enter a repeat count and press Apply first!": {
		"ko": "😭먼저 반복 횟수를 입력하고 '적용' 버튼을 눌러주세요!",
	},
	"Focus over! Rest started ☕": {
		"ko": "집중 종료! 휴식 시작☕",
	},
	"Set %d complete! Focus again 🔥": {
		"ko": "%d세트 완료! 다시 집중🔥",
	},
	"All sessions finished! %d sets complete!": {
		"ko": "모든 세션이 끝났습니다! 총 %d세트 완료!",
	},
	"Settings applied!": {
		"ko": "설정이 적용되었습니다!",
	},
	"✔️ Timer reset!": {
		"ko": "✔️초기화 되었습니다!",
	},
	"Reset the timer before changing settings.": {
		"ko": "설정을 바꾸려면 먼저 초기화해주세요.",
	},
	"😭 Enter a valid repeat count!": {
		"ko": "😭올바른 반복 횟수를 입력해주세요!",
	},
	"😭 The repeat count must be a whole number!": {
		"ko": "😭반복 횟수는 정수만 입력 가능합니다!",
	},

	// Set counter.
	"Completed sets: %d / ?": {
		"ko": "완료한 세트: %d세트 / ?",
	},
	"Completed sets: %d / ∞": {
		"ko": "완료한 세트: %d세트 / ∞",
	},
	"Completed sets: %d / %d": {
		"ko": "완료한 세트: %d세트 / %d세트",
	},

	// Controls.
	"Start":                 {"ko": "시작"},
	"Pause":                 {"ko": "일시 정지"},
	"Reset":                 {"ko": "초기화"},
	"Apply":                 {"ko": "적용"},
	"Preset":                {"ko": "프리셋"},
	"Repeat (0 = infinite)": {"ko": "반복 횟수 (0 = 무한)"},
	"Show Tomato":           {"ko": "토마토 보기"},
	"Quit":                  {"ko": "종료"},
	"Start at login":        {"ko": "로그인 시 실행"},
}

// Detect picks the language from EnvLanguage or the system locale.
func Detect() string {
	if forced := strings.TrimSpace(os.Getenv(EnvLanguage)); forced != "" {
		return normalize(forced)
	}

	logger := log.WithComponent("i18n")
	userLocales, err := locale.GetLocales()
	if err != nil {
		logger.Debug().Err(err).Msg("could not read user locale, defaulting to english")
		return "en"
	}
	if len(userLocales) == 0 {
		return "en"
	}
	logger.Debug().Str("locale", userLocales[0]).Msg("detected user locale")
	return normalize(userLocales[0])
}

// SetLanguage selects the active language. An empty value re-runs detection.
func SetLanguage(value string) {
	if strings.TrimSpace(value) == "" {
		value = Detect()
	}
	mu.Lock()
	lang = normalize(value)
	mu.Unlock()
}

// Language returns the active language, detecting it on first use.
func Language() string {
	mu.RLock()
	current := lang
	mu.RUnlock()
	if current != "" {
		return current
	}
	SetLanguage("")
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// T translates key, falling back to the key itself.
func T(key string) string {
	if translated, ok := translations[key][Language()]; ok {
		return translated
	}
	return key
}

// Tf translates format and applies args to it.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// Status returns the status line for key.
func Status(key timekeeper.StatusKey) string {
	switch key {
	case timekeeper.StatusReady:
		return T("Ready! Click the tomato.")
	case timekeeper.StatusFocusing:
		return T("Focusing 🔥")
	case timekeeper.StatusResting:
		return T("Resting ☕")
	case timekeeper.StatusPaused:
		return T("Paused")
	case timekeeper.StatusComplete:
		return T("🎉 Done!")
	}
	return T("The tomato is waiting for you!")
}

// Toast returns the message for toast.
func Toast(toast timekeeper.Toast) string {
	switch toast.Key {
	case timekeeper.ToastNotConfigured:
		return T("😭 Enter a repeat count and press Apply first!")
	case timekeeper.ToastRestStarted:
		return T("Focus over! Rest started ☕")
	case timekeeper.ToastSetComplete:
		return Tf("Set %d complete! Focus again 🔥", toast.Sets)
	case timekeeper.ToastRunComplete, timekeeper.ToastAllComplete:
		return Tf("All sessions finished! %d sets complete!", toast.Sets)
	case timekeeper.ToastApplied:
		return T("Settings applied!")
	case timekeeper.ToastReset:
		return T("✔️ Timer reset!")
	case timekeeper.ToastSessionActive:
		return T("Reset the timer before changing settings.")
	case timekeeper.ToastInvalidConfig:
		return T("😭 Enter a valid repeat count!")
	}
	return string(toast.Key)
}

// SetCounter formats the completed set counter.
func SetCounter(view timekeeper.ProgressView) string {
	switch {
	case !view.Configured:
		return Tf("Completed sets: %d / ?", view.Completed)
	case view.Infinite:
		return Tf("Completed sets: %d / ∞", view.Completed)
	}
	return Tf("Completed sets: %d / %d", view.Completed, view.Target)
}

func normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(value, "ko") {
		return "ko"
	}
	return "en"
}
