package cmd

import (
	"encoding/json"
	"fmt"
)

// printJSON marshals v with indentation and writes it to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
