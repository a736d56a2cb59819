package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/logaspect/loggable"
)

var errEmptyName = errors.New("name is required")

// GreetRequest asks for a greeting.
type GreetRequest struct {
	loggable.Marker
	Name     string `json:"name"`
	Language string `json:"language"`
	Email    string `json:"email" log:"replace=[hidden]"`
}

// Greeting is a rendered greeting.
type Greeting struct {
	loggable.Marker
	Message string `json:"message"`
}

// Greeter is the demo service.
type Greeter struct{}

var salutations = map[string]string{
	"en": "Hello",
	"fr": "Bonjour",
	"de": "Hallo",
	"es": "Hola",
}

// Greet renders a greeting in the requested language, English by default.
func (g *Greeter) Greet(ctx context.Context, req GreetRequest) (Greeting, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Greeting{}, errEmptyName
	}
	salutation, ok := salutations[strings.ToLower(req.Language)]
	if !ok {
		salutation = salutations["en"]
	}
	return Greeting{Message: fmt.Sprintf("%s, %s!", salutation, name)}, nil
}
