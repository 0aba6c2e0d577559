package dto

type NavItem struct {
	Href     string `json:"href"`
	Icon     string `json:"icon"`
	LabelKey string `json:"label_key"`
}

type LogoutAction struct {
	CallbackURL string `json:"callback_url"`
}

// Sidebar carries i18n keys only; the client owns the translations.
type Sidebar struct {
	TitleKey   string       `json:"title_key"`
	Items      []NavItem    `json:"items"`
	LoggedInAs string       `json:"logged_in_as"`
	Logout     LogoutAction `json:"logout"`
}
