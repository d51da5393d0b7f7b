package view

import "golang.org/x/text/language"

// Messages is one locale's UI text, keyed by message id.
type Messages map[string]string

// T returns the text for key, or the key itself when it is missing.
func (m Messages) T(key string) string {
	if s, ok := m[key]; ok {
		return s
	}
	return key
}

const defaultLocale = "en"

var catalogs = map[string]Messages{
	"en": {
		"app.name":               "PR Business",
		"nav.title":              "Navigation",
		"login.title":            "Sign in",
		"login.phone":            "Phone number",
		"login.password":         "Password",
		"login.submit":           "Sign in",
		"login.failed":           "Sign-in failed. Please check your phone number and password.",
		"login.invalid":          "Please fill in both fields.",
		"logout":                 "Sign out",
		"role.current":           "Active role",
		"role.switch":            "Switch role",
		"role.switch_failed":     "Could not switch role. Please try again.",
		"role.none":              "No role assigned",
		"loading.title":          "Loading",
		"loading.body":           "Restoring your session…",
		"error.title":            "Something went wrong",
		"error.body":             "The page could not be displayed.",
		"error.reload":           "Reload",
		"error.home":             "Go home",
		"forbidden.title":        "Access denied",
		"forbidden.body":         "None of your roles can open this page.",
		"backend.unavailable":    "The service is temporarily unavailable. Please try again later.",
		"section.placeholder":    "This section is served by its own module.",
		"dashboard.welcome":      "Welcome back",
		"dashboard.your_entries": "Pages available to you",
	},
	"zh": {
		"app.name":               "PR Business",
		"nav.title":              "导航",
		"login.title":            "登录",
		"login.phone":            "手机号",
		"login.password":         "密码",
		"login.submit":           "登录",
		"login.failed":           "登录失败，请检查手机号和密码。",
		"login.invalid":          "请填写手机号和密码。",
		"logout":                 "退出登录",
		"role.current":           "当前角色",
		"role.switch":            "切换角色",
		"role.switch_failed":     "角色切换失败，请重试。",
		"role.none":              "暂无角色",
		"loading.title":          "加载中",
		"loading.body":           "正在恢复登录状态…",
		"error.title":            "页面出错了",
		"error.body":             "页面无法显示。",
		"error.reload":           "重新加载",
		"error.home":             "返回首页",
		"forbidden.title":        "无权访问",
		"forbidden.body":         "您的角色无法访问此页面。",
		"backend.unavailable":    "服务暂时不可用，请稍后再试。",
		"section.placeholder":    "此页面由独立模块提供。",
		"dashboard.welcome":      "欢迎回来",
		"dashboard.your_entries": "您可以访问的页面",
	},
}

// Catalog returns the messages of locale, falling back to English.
func Catalog(locale string) Messages {
	if m, ok := catalogs[locale]; ok {
		return m
	}
	return catalogs[defaultLocale]
}

// locales lists the catalog keys in matcher order.
var (
	locales = []string{"en", "zh"}
	matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})
)

// Negotiate picks a supported locale from an Accept-Language header,
// honoring q-weights. fallback is used when nothing matches.
func Negotiate(acceptLanguage, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err == nil && len(tags) > 0 {
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			return locales[idx]
		}
	}
	if _, ok := catalogs[fallback]; ok {
		return fallback
	}
	return defaultLocale
}
