// Seeder fills a local database with fabricated articles so the sync and
// search stages can be exercised without fetching real feeds.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/newswire"
	"github.com/poiesic/newswire/core"
)

var headlines = []string{
	"City council approves funding for riverside flood barriers",
	"Local observatory captures rare footage of a daytime fireball",
	"Startup unveils battery that charges electric buses in minutes",
	"Drought forces vineyards to replant with hardier grape varieties",
	"Museum returns bronze statues to their country of origin",
	"Researchers map coral recovery after last summer's bleaching",
	"New ferry line cuts commute across the bay to twenty minutes",
	"Union and port authority reach deal hours before strike deadline",
	"Wildlife corridor over the highway records its first bear crossing",
	"School district pilots four-day week in rural campuses",
	"Archaeologists uncover merchant quarter beneath the old market",
	"Regional airline retires its last turboprop after forty years",
	"Volunteers log record turnout for annual shoreline cleanup",
	"Hospital opens first robotic surgery wing in the province",
	"Farmers market vendors adopt shared cold-chain cooperative",
	"Historic theater reopens with restored 1920s organ",
	"Transit agency tests on-demand shuttles in low-density suburbs",
	"Fishing quota cuts spark protests in coastal towns",
	"University lab prints functional heart valve from patient cells",
	"Night trains return to the capital route after a decade",
	"Glacier monitoring station reports earliest melt on record",
	"Library system eliminates late fees and sees returns rise",
	"Desalination plant comes online ahead of summer demand",
	"Beekeepers report strongest spring survival rates in years",
	"Old rail yard rezoned for mixed-income housing development",
	"Storm chasers document rare anticyclonic tornado on camera",
	"National park caps daily visitors to protect nesting sites",
	"Local chess club produces its second grandmaster",
	"Ferry operator converts flagship vessel to hybrid power",
	"Citizen scientists help catalog ten thousand moth species",
}

var (
	dbPath       = flag.String("db", "./newswire_db", "path to the database directory")
	seedFileName = flag.String("src", "", "file of seed headlines, one per line")
	sourceDomain = flag.String("domain", "seed.example.com", "domain used for fabricated links")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// articleFromHeadline fabricates a plausible stored article. The body repeats
// the headline so query terms land verbatim hits during search testing.
func articleFromHeadline(headline string, ordinal int) *core.Article {
	link := fmt.Sprintf("https://%s/articles/%d", *sourceDomain, ordinal)
	body := fmt.Sprintf("%s. %s", headline,
		strings.Repeat("Further details were not available at press time. ", 3))
	now := time.Now()

	return &core.Article{
		UUID:          core.NewUUID(),
		Link:          link,
		SourceFeedURL: fmt.Sprintf("https://%s/feed.xml", *sourceDomain),
		Domain:        *sourceDomain,
		Title:         headline,
		Description:   headline,
		Content:       body,
		ContentSource: core.ContentSourceInline,
		Language:      "eng",
		WordCount:     core.CountWords(body),
		PublishedAt:   now,
		FetchedAt:     now,
		UpdatedAt:     now,
	}
}

func seed(ctx context.Context, db *newswire.Database, source iter.Seq[string]) (int, error) {
	stored := 0
	for line := range source {
		headline := strings.TrimSpace(line)
		if headline == "" {
			continue
		}
		article := articleFromHeadline(headline, stored)
		if err := db.Articles().AddArticle(ctx, article); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func main() {
	db, err := newswire.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(headlines)
	}

	stored, err := seed(context.Background(), db, source)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "articles", stored, "db", *dbPath)
}
