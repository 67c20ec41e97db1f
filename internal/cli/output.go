package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Profile:
		o.printProfile(v)
	case AuthResult:
		o.printAuthResult(v)
	case BulkResult:
		o.printBulkResult(v)
	case StatsResult:
		o.printStatsResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Profile response type (matches API)
type Profile struct {
	Version   int64      `json:"version"`
	Payload   []byte     `json:"payload"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AuthResult response type
type AuthResult struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	Account string    `json:"account"`
	Expires time.Time `json:"expires"`
}

// BulkResult response type
type BulkResult struct {
	Success bool               `json:"success"`
	Users   map[string]Profile `json:"users"`
}

// StatsResult response type
type StatsResult struct {
	SyncedUsers int64     `json:"synced_users"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Version: %d\n", p.Version)
	fmt.Printf("Payload: %d bytes\n", len(p.Payload))
	if p.UpdatedAt != nil {
		fmt.Printf("Updated: %s\n", p.UpdatedAt.Format(time.RFC3339))
	}
	if p.Version == 0 {
		fmt.Println("(never synced)")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Account: %s\n", a.Account)
	fmt.Printf("Token: %s\n", a.Token)
	fmt.Printf("Expires: %s\n", a.Expires.Format(time.RFC3339))
}

func (o *Output) printBulkResult(b BulkResult) {
	fmt.Printf("Profiles (%d):\n", len(b.Users))
	for id, p := range b.Users {
		fmt.Printf("  %s: version %d, %d bytes\n", id, p.Version, len(p.Payload))
	}
}

func (o *Output) printStatsResult(s StatsResult) {
	fmt.Printf("Synced users: %d\n", s.SyncedUsers)
	fmt.Printf("Timestamp: %s\n", s.Timestamp.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
