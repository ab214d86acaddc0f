package integrations_test

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/familytree/pkg/integrations"
)

func ExampleAPIError() {
	err := fmt.Errorf("load person: %w", &integrations.APIError{
		Method:     http.MethodGet,
		URL:        "https://family.example.com/api/persons/42/",
		StatusCode: http.StatusServiceUnavailable,
	})

	// Every failed call matches ErrRequestFailed, whatever the status.
	fmt.Println(errors.Is(err, integrations.ErrRequestFailed))

	var apiErr *integrations.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.StatusCode)
	}
	// Output:
	// true
	// 503
}
