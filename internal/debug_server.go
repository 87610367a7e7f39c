package internal

import (
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"convohub/domain"
	"convohub/errors"
	"convohub/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key          string
	Kind         string
	Tenant       string
	CreatedAt    string
	Participants string
	Detail       string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes the store inspection dashboard plus two
// operational endpoints over the engine. This is a diagnostics surface
// for operators, not the product API, which lives elsewhere.
func StartDebugServer(
	log *slog.Logger,
	db *badger.DB,
	port int,
	mapper RowMapper,
	statsProvider StatsProvider,
	resolver services.IResolverService,
	visibility services.IVisibilityService,
) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "conv:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resolve", func(w http.ResponseWriter, r *http.Request) {
		userA, errA := uuid.Parse(r.URL.Query().Get("user_a"))
		userB, errB := uuid.Parse(r.URL.Query().Get("user_b"))
		tenant, errT := strconv.ParseInt(r.URL.Query().Get("tenant"), 10, 64)
		if errA != nil || errB != nil || errT != nil {
			http.Error(w, "expected user_a, user_b (uuid) and tenant (int)", http.StatusBadRequest)
			return
		}

		conv, err := resolver.ResolveDirect(r.Context(), userA, userB, domain.TenantID(tenant))
		switch {
		case stderrors.Is(err, errors.ErrNoSharedTenant):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case stderrors.Is(err, errors.ErrSamePairUser):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, conv)
	})

	mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		userID, errU := uuid.Parse(r.URL.Query().Get("user"))
		tenant, errT := strconv.ParseInt(r.URL.Query().Get("tenant"), 10, 64)
		if errU != nil || errT != nil {
			http.Error(w, "expected user (uuid) and tenant (int)", http.StatusBadRequest)
			return
		}

		convs, err := visibility.VisibleConversations(r.Context(), userID, domain.TenantID(tenant))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, convs)
	})

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Debug server stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func DefaultMapper(key string, val []byte) InspectRow {
	return InspectRow{
		Key:          key,
		Kind:         "RAW",
		Tenant:       "-",
		CreatedAt:    "--:--:--",
		Participants: "-",
		Detail:       "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
}
