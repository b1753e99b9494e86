// Command smoke walks a running server through the note lifecycle:
// register, create, update, list, show and delete.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

var baseURL = flag.String("base-url", "http://localhost:3000/api", "API base URL")

// Pretty print JSON helper
func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, *baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

type step struct {
	title  string
	method string
	path   func() string
	body   interface{}
	want   int
	after  func(raw []byte) error
}

func main() {
	flag.Parse()
	color.Cyan("Starting note lifecycle smoke test against %s\n", *baseURL)

	var token, noteId string
	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])

	steps := []step{
		{
			title: "Register", method: http.MethodPost, path: func() string { return "/user/register" },
			body: map[string]string{"username": "smoke", "email": email, "password": "smoke-pass"},
			want: http.StatusCreated,
			after: func(raw []byte) error {
				var res struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(raw, &res); err != nil {
					return err
				}
				token = res.Token
				return nil
			},
		},
		{
			title: "Create note", method: http.MethodPost, path: func() string { return "/notes" },
			body: map[string]interface{}{
				"title": "T1", "content": "C1", "name": "Work",
				"tags": []map[string]string{{"name": "urgent"}},
			},
			want: http.StatusCreated,
			after: func(raw []byte) error {
				var res struct {
					Note struct {
						Id string `json:"id"`
					} `json:"note"`
				}
				if err := json.Unmarshal(raw, &res); err != nil {
					return err
				}
				noteId = res.Note.Id
				return nil
			},
		},
		{
			title: "Replace tags", method: http.MethodPut, path: func() string { return "/notes/" + noteId },
			body: map[string]interface{}{"tags": []map[string]string{{"name": "later"}}},
			want: http.StatusOK,
		},
		{title: "Show note", method: http.MethodGet, path: func() string { return "/notes/" + noteId }, want: http.StatusOK},
		{title: "List notes", method: http.MethodGet, path: func() string { return "/notes?page=1&per_page=10" }, want: http.StatusOK},
		{title: "List tags", method: http.MethodGet, path: func() string { return "/tags" }, want: http.StatusOK},
		{title: "Delete note", method: http.MethodDelete, path: func() string { return "/notes/" + noteId }, want: http.StatusOK},
		{title: "Show deleted note", method: http.MethodGet, path: func() string { return "/notes/" + noteId }, want: http.StatusNotFound},
	}

	for i, s := range steps {
		color.Yellow("\n%d. %s", i+1, s.title)
		resp, raw, err := sendRequest(s.method, s.path(), token, s.body)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		prettyPrint(raw)

		if resp.StatusCode != s.want {
			color.Red("Status: %s (want %d)", resp.Status, s.want)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)

		if s.after != nil {
			if err := s.after(raw); err != nil {
				color.Red("Failed to read response: %v", err)
				os.Exit(1)
			}
		}
	}

	color.Cyan("\nSmoke test complete")
}
