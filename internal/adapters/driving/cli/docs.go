package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage indexed documents",
	Long:  `List, inspect, or remove indexed documents.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [filename]",
	Short: "Show document details and content preview",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Remove a document from the index",
	Long:  `Removes every chunk and vector of the named document.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

// docsPreviewLen bounds the content preview printed by show.
const docsPreviewLen = 500

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()

	docs, err := libraryService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'quaero ingest <path>' to add some.")
		return nil
	}

	cmd.Println("Indexed documents:")
	cmd.Println()
	for i := range docs {
		details, err := libraryService.GetDetails(ctx, docs[i].Filename)
		if err != nil {
			cmd.Printf("  %s\n", docs[i].Filename)
			continue
		}
		cmd.Printf("  %s\n", details.Filename)
		cmd.Printf("    Chunks:   %d\n", details.ChunkCount)
		cmd.Printf("    Category: %s\n", details.Category)
		cmd.Printf("    Size:     %.2f MB\n", details.FileSizeMB)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	filename := args[0]
	ctx := context.Background()

	details, err := libraryService.GetDetails(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", details.Filename)
	cmd.Printf("  Title:    %s\n", details.Title)
	cmd.Printf("  Path:     %s\n", details.SourcePath)
	cmd.Printf("  Type:     %s\n", details.FileType)
	cmd.Printf("  Size:     %.2f MB\n", details.FileSizeMB)
	cmd.Printf("  Chunks:   %d\n", details.ChunkCount)
	cmd.Printf("  Category: %s\n", details.Category)
	cmd.Printf("  Created:  %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", details.UpdatedAt.Format("2006-01-02 15:04:05"))

	doc, err := libraryService.Get(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	preview := doc.Content
	if len(preview) > docsPreviewLen {
		preview = preview[:docsPreviewLen] + "..."
	}
	cmd.Println("\nPreview:")
	cmd.Println(preview)

	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	filename := args[0]

	deleted, err := libraryService.Delete(context.Background(), filename)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if !deleted {
		cmd.Printf("No document named %s in the index.\n", filename)
		return nil
	}

	cmd.Printf("Deleted %s from the index.\n", filename)
	return nil
}
