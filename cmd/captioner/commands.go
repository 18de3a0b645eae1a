package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jefferyharrell/Captioner-backend/internal/catalog"
	"github.com/jefferyharrell/Captioner-backend/internal/storage"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List photo identifiers from the storage backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := newBackend(cmd)
			if err != nil {
				return err
			}

			photos, err := backend.ListPhotos(cmd.Context())
			if err != nil {
				return err
			}
			for _, photo := range photos {
				fmt.Fprintln(cmd.OutOrStdout(), photo)
			}
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <identifier>",
		Short: "Download the raw bytes of one photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := newBackend(cmd)
			if err != nil {
				return err
			}

			data, err := backend.GetPhoto(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the photo to this file instead of stdout")
	return cmd
}

func newCaptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caption",
		Short: "Get, set or remove a photo's caption",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <identifier>",
			Short: "Print the photo's caption, if any",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				captions, err := backendCaptions(cmd)
				if err != nil {
					return err
				}

				caption, err := captions.GetCaption(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if caption == nil {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), *caption)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <identifier> <caption>",
			Short: "Store a caption for the photo",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				captions, err := backendCaptions(cmd)
				if err != nil {
					return err
				}
				return captions.SetCaption(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "rm <identifier>",
			Short: "Remove the photo's caption",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				captions, err := backendCaptions(cmd)
				if err != nil {
					return err
				}
				return captions.DeleteCaption(cmd.Context(), args[0])
			},
		},
	)

	return cmd
}

// backendCaptions builds the configured backend and asserts its caption
// capability
func backendCaptions(cmd *cobra.Command) (storage.CaptionStore, error) {
	backend, _, err := newBackend(cmd)
	if err != nil {
		return nil, err
	}
	return storage.Captions(backend)
}

func newRescanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Discover new photos in storage and add them to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cfg, err := newBackend(cmd)
			if err != nil {
				return err
			}

			store, err := catalog.NewSQLiteStore(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			numNew, err := catalog.Rescan(cmd.Context(), backend, store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new photos\n", numNew)
			return nil
		},
	}
}
