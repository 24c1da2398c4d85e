// Command llm-stub is a tiny OpenAI-compatible server for local pipeline
// testing. It answers every chat completion with a fixed set of care cards so
// the full AI path can be exercised without a real model.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const cannedCards = `[
  {
    "title": "Calm First, Talk Second",
    "subtitle": "Connection before correction",
    "tips": [
      "Kneel to your child's eye level and keep your voice low before saying anything else.",
      "Name the feeling you see, for example say you seem really frustrated right now.",
      "Wait for the storm to pass its peak before offering solutions or choices.",
      "Offer two acceptable options once your child is calm, and let them pick.",
      "Reconnect with a hug before revisiting what happened."
    ],
    "age_groups": ["2-4", "4-6"]
  },
  {
    "title": "Routines That Prevent Battles",
    "subtitle": "Predictability lowers the temperature",
    "tips": [
      "Give a five minute warning before every transition.",
      "Keep meals and sleep on a steady schedule, especially on weekends.",
      "Let your child own one step of the routine, like choosing pajamas.",
      "Praise the routine going well instead of only reacting when it breaks."
    ],
    "age_groups": ["2-4"]
  }
]`

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]any{
			"id":      "stub-completion",
			"object":  "chat.completion",
			"model":   model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": cannedCards,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	log.Printf("llm-stub listening on %s (model %s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
