package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"convohub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "conv:", "Prefix to scan (conv:, pair:, user:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf(" Conversation store : %s ", *dbPath)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Tenant", "Created", "Participants", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			err := item.Value(func(v []byte) error {
				table.Append(renderRow(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

// renderRow decodes record keys into full rows; index keys (pair:,
// user:) only carry their target id, shown as the detail column.
func renderRow(key string, val []byte) []string {
	if strings.HasPrefix(key, "conv:") {
		conv, err := repositories.DecodeConversation(val)
		if err != nil {
			fmt.Printf("Error decoding key %s: %v\n", key, err)
			return []string{key, "RAW", "-", "-", "-", strconv.Itoa(len(val)) + " bytes"}
		}

		var users []string
		for _, p := range conv.Participants {
			users = append(users, shorten(p.UserID.String()))
		}
		return []string{
			key,
			string(conv.Kind),
			strconv.FormatInt(int64(conv.TenantID), 10),
			conv.CreatedAt.Format("2006-01-02 15:04:05"),
			strings.Join(users, ", "),
			conv.ID.String(),
		}
	}
	return []string{key, "index", "-", "-", "-", string(val)}
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
