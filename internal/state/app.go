package state

// API is the full service surface the state layer drives. The civicapi
// client satisfies it; tests satisfy the per-container slices instead.
type API interface {
	AuthAPI
	IssueAPI
	TaskAPI
	ModerationAPI
	AnalyticsAPI
}

// App owns one instance of every state container, wired so a logout from
// any path resets every credential-gated container. The inbox is device
// local and survives logout; only its delivery channel is torn down, by
// whoever runs the push listener.
type App struct {
	Session    *Session
	Issues     *IssueFeed
	Detail     *IssueDetail
	Tasks      *TaskBoard
	Moderation *ModerationQueue
	Dashboard  *Dashboard
	Inbox      *Inbox
}

// NewApp wires the containers around a shared session.
func NewApp(api API, store TokenStore) *App {
	session := NewSession(api, store)
	app := &App{
		Session:    session,
		Issues:     NewIssueFeed(api, session),
		Detail:     NewIssueDetail(api, session),
		Tasks:      NewTaskBoard(api, session),
		Moderation: NewModerationQueue(api, session),
		Dashboard:  NewDashboard(api, session),
		Inbox:      NewInbox(),
	}

	session.OnLogout(app.Issues.Reset)
	session.OnLogout(app.Detail.Reset)
	session.OnLogout(app.Tasks.Reset)
	session.OnLogout(app.Moderation.Reset)
	session.OnLogout(app.Dashboard.Reset)

	return app
}
