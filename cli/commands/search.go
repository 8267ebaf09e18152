package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asknews/asknews-go/news"
)

var (
	searchArticles   int
	searchMethod     string
	searchCategories []string
	searchCountries  []string
	searchLanguages  []string
	searchHoursBack  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed news articles",
	Long: `Search indexed news articles.

Examples:
  asknews search "central bank rate decision"
  asknews search "wildfires" --countries US,CA --articles 20
  asknews search "elections" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchArticles, "articles", 10, "Number of articles to return")
	searchCmd.Flags().StringVar(&searchMethod, "method", "", "Search method (nl, kw, both)")
	searchCmd.Flags().StringSliceVar(&searchCategories, "categories", nil, "Category filter")
	searchCmd.Flags().StringSliceVar(&searchCountries, "countries", nil, "Country filter")
	searchCmd.Flags().StringSliceVar(&searchLanguages, "languages", nil, "Language filter")
	searchCmd.Flags().IntVar(&searchHoursBack, "hours-back", 0, "Restrict to the last N hours")
}

func runSearch(cmd *cobra.Command, args []string) error {
	sdk, err := newSDK()
	if err != nil {
		return err
	}
	defer sdk.Close()

	resp, err := sdk.News.Search(context.Background(), &news.SearchRequest{
		Query:      strings.Join(args, " "),
		NArticles:  searchArticles,
		Method:     searchMethod,
		Categories: searchCategories,
		Countries:  searchCountries,
		Languages:  searchLanguages,
		HoursBack:  searchHoursBack,
		ReturnType: "dicts",
	})
	if err != nil {
		return handleAPIError(err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.AsDicts) == 0 {
		fmt.Println("No articles found.")
		return nil
	}
	for _, a := range resp.AsDicts {
		fmt.Printf("%s  %s\n", a.PubDate.Format("2006-01-02 15:04"), a.EngTitle)
		fmt.Printf("    %s (%s)\n", a.SourceID, a.ArticleURL)
		if verbose && a.Summary != "" {
			fmt.Printf("    %s\n", a.Summary)
		}
	}
	return nil
}
