package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Brand        *BrandHandler
	Calendar     *CalendarHandler
	Task         *TaskHandler
	Notification *NotificationHandler
	Activity     *ActivityHandler
	WS           *WSHandler
}
