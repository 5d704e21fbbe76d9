package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/notecheck/internal/core/domain"
)

var (
	indexID     string
	indexTitle  string
	indexSource string
	indexDomain string
	indexTrust  float64
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage indexed reference documents",
}

var indexAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Index a reference document from a text file",
	Long: `Reads extracted text from a file and indexes it as a reference
document. The file must already be plain text; extraction from PDFs or
other formats happens upstream.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexAdd,
}

var indexRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a reference document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexRemove,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed reference documents",
	RunE:  runIndexList,
}

func init() {
	indexAddCmd.Flags().StringVar(&indexID, "id", "", "document ID (default: generated)")
	indexAddCmd.Flags().StringVar(&indexTitle, "title", "", "document title (default: file name)")
	indexAddCmd.Flags().StringVar(&indexSource, "source", "book", "source type: book, note or web")
	indexAddCmd.Flags().StringVar(&indexDomain, "domain", "general", "knowledge domain")
	indexAddCmd.Flags().Float64Var(&indexTrust, "trust", 0, "trust score in [0,1] (default: source type default)")

	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	if err := setupServices(cmd); err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	id := indexID
	if id == "" {
		id = uuid.New().String()
	}
	title := indexTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := domain.ReferenceDocument{
		ID:         id,
		Title:      title,
		SourceType: domain.SourceType(indexSource),
		Domain:     domain.KnowledgeDomain(indexDomain),
		Content:    string(content),
		TrustScore: indexTrust,
	}

	if err := indexService.IndexDocument(cmd.Context(), doc); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %s (%s)\n", title, id)
	return nil
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	if err := setupServices(cmd); err != nil {
		return err
	}

	if err := indexService.RemoveDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removal failed: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if err := setupServices(cmd); err != nil {
		return err
	}

	docs, err := indexService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}
	for _, doc := range docs {
		cmd.Printf("  %s  %-8s %-10s trust %.2f  %s\n",
			doc.ID, doc.SourceType, doc.Domain, doc.EffectiveTrustScore(), doc.Title)
	}
	return nil
}
