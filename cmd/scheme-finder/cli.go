// cmd/scheme-finder/cli.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scheme-finder/internal/models"
	discoverschemes "scheme-finder/internal/workers/welfare/discover-schemes"
	extractprofile "scheme-finder/internal/workers/welfare/extract-profile"
)

func newExtractCmd(opts *cliOptions) *cobra.Command {
	var file, userID, mimeType string
	var document bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a profile from free text read from --file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file, opts.stdin)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			var output *extractprofile.Output
			if document {
				output, err = a.extractor.ExtractDocument(cmd.Context(), &extractprofile.DocumentInput{
					Data:     data,
					MimeType: documentType(file, mimeType),
					UserID:   userID,
				})
			} else {
				output, err = a.extractor.Execute(cmd.Context(), &extractprofile.Input{RawText: string(data), UserID: userID})
			}
			if err != nil {
				return err
			}
			return printJSON(opts.stdout, output)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from this file instead of stdin")
	cmd.Flags().BoolVar(&document, "document", false, "Treat the input as a document and run it through the text source")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Document media type (default: guessed from --file, else text/plain)")
	cmd.Flags().StringVar(&userID, "user", "", "Actor id recorded with the analytics event")
	return cmd
}

func newDiscoverCmd(opts *cliOptions) *cobra.Command {
	var profilePath, userID string
	var popular bool
	var maxResults int

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover schemes for a profile JSON file, or the popular list",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := &discoverschemes.Input{Popular: popular, MaxResults: maxResults, UserID: userID}
			if !popular {
				if profilePath == "" {
					return fmt.Errorf("either --profile or --popular is required")
				}
				profile, err := readProfile(profilePath)
				if err != nil {
					return err
				}
				input.Profile = profile
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			output, err := a.discoverer.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printJSON(opts.stdout, output)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile JSON file, as printed by extract")
	cmd.Flags().BoolVar(&popular, "popular", false, "List broadly relevant schemes without a profile")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum number of schemes (0 uses the configured default)")
	cmd.Flags().StringVar(&userID, "user", "", "Actor id recorded with the analytics event")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readProfile accepts either a bare profile or the {"profile": ...} wrapper
// that extract prints.
func readProfile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var wrapped struct {
		Profile *models.Profile `json:"profile"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Profile != nil {
		return wrapped.Profile, nil
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &profile, nil
}

func documentType(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); path != "" && t != "" {
		return t
	}
	return "text/plain"
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
