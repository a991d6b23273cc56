// internal/models/application.go
package models

// Application is a candidate's submitted application. It is read-only once
// ingested.
type Application struct {
	Name       string            `json:"name"`
	Contact    map[string]string `json:"contact"`
	Experience []Experience      `json:"experience"`
	Skills     []string          `json:"skills"`
	Education  []Education       `json:"education"`
}

type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
}

// Email returns contact["email"] and whether it was present.
func (a *Application) Email() (string, bool) {
	if a == nil || a.Contact == nil {
		return "", false
	}
	email, ok := a.Contact["email"]
	return email, ok
}
