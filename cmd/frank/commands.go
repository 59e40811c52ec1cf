package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/frank/internal/api"
	"github.com/kalambet/frank/internal/config"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/roster"
)

// --- search / discover ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank roster experts against a natural-language need",
	Long: `Rank roster experts against a natural-language need.

Examples:
  frank search "nuclear safety regulations"
  frank search --mode keyword mining
  frank search --session 3f2c... "battery supply chain"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		if _, err := finder.ParseMode(mode); err != nil {
			return err
		}
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		out, err := postSearch(cmd, client, "/search", api.SearchRequest{
			Query:   strings.Join(args, " "),
			Mode:    mode,
			Session: session,
		})
		if err != nil {
			return err
		}
		return printOutcome(cmd.OutOrStdout(), out, asJSON)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Generate external expert profiles for a need and rank the roster",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		out, err := postSearch(cmd, client, "/discover", api.SearchRequest{
			Query:   strings.Join(args, " "),
			Session: session,
		})
		if err != nil {
			return err
		}
		if !asJSON && len(out.Generated) > 0 {
			printSuccess("Added %d generated experts", len(out.Generated))
		}
		return printOutcome(cmd.OutOrStdout(), out, asJSON)
	},
}

func postSearch(cmd *cobra.Command, client *apiClient, path string, req api.SearchRequest) (api.SearchResponse, error) {
	var out api.SearchResponse
	resp, err := client.post(cmd.Context(), path, req)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, err
	}
	if !out.Applied {
		printWarning("a newer request in session %s superseded this one", out.Session)
	}
	return out, nil
}

func printOutcome(w io.Writer, out api.SearchResponse, asJSON bool) error {
	if asJSON {
		return writeIndented(w, out)
	}
	writeAnalysis(w, out.Analysis)
	writeMatches(w, out.Results, out.Mode == finder.ModeAI)
	return nil
}

func init() {
	searchCmd.Flags().String("mode", string(finder.ModeAI), "search mode: ai or keyword")
	searchCmd.Flags().String("session", "", "session ID; only the newest request per session is recorded")
	searchCmd.Flags().Bool("json", false, "print the raw response")
	discoverCmd.Flags().String("session", "", "session ID; only the newest request per session is recorded")
	discoverCmd.Flags().Bool("json", false, "print the raw response")
}

// --- experts ---

var expertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "Browse and edit the expert roster",
}

var expertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List experts, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := listQuery(cmd)
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/experts"+query)
		if err != nil {
			return err
		}
		var page roster.Page
		if err := decodeJSON(resp, &page); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeIndented(w, page)
		}
		for _, e := range page.Experts {
			writeExpert(w, e)
		}
		fmt.Fprintf(w, "\n%d-%d of %d\n", min(page.Offset+1, page.Total), page.Offset+len(page.Experts), page.Total)
		return nil
	},
}

// listQuery turns the list flags into a query string for GET /experts.
func listQuery(cmd *cobra.Command) (string, error) {
	v := url.Values{}
	for _, name := range []string{"query", "industry", "function", "location", "type", "availability"} {
		if s, _ := cmd.Flags().GetString(name); s != "" {
			v.Set(name, s)
		}
	}
	if cmd.Flags().Changed("min-rating") {
		r, _ := cmd.Flags().GetFloat64("min-rating")
		if r < 0 || r > 5 {
			return "", fmt.Errorf("--min-rating must be between 0 and 5")
		}
		v.Set("minRating", strconv.FormatFloat(r, 'f', -1, 64))
	}
	for _, name := range []string{"limit", "offset"} {
		if n, _ := cmd.Flags().GetInt(name); n > 0 {
			v.Set(name, strconv.Itoa(n))
		}
	}
	if len(v) == 0 {
		return "", nil
	}
	return "?" + v.Encode(), nil
}

var expertsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one expert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/experts/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		var e expert.Expert
		if err := decodeJSON(resp, &e); err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeIndented(cmd.OutOrStdout(), e)
		}
		writeDetail(cmd.OutOrStdout(), e)
		return nil
	},
}

var expertsSetCmd = &cobra.Command{
	Use:   "set <id> <field=value>...",
	Short: "Update expert fields",
	Long: `Update expert fields. The result is validated before it is stored.

Examples:
  frank experts set int-001 availability=busy
  frank experts set ext-002 rating=4.5 reviewCount=12 lastContact=2024-05-01`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildPatch(args[1:])
		if err != nil {
			return err
		}
		return editExpert(cmd, func(c *apiClient) (expert.Expert, error) {
			return decodeExpert(c.patch(cmd.Context(), "/experts/"+url.PathEscape(args[0]), patch))
		})
	},
}

var (
	patchStrings = []string{"name", "photo", "email", "phone", "location", "industry", "function",
		"type", "availability", "bio", "notes", "lastContact", "lead"}
	patchInts   = []string{"yearsExperience", "reviewCount"}
	patchFloats = []string{"rating"}
)

// buildPatch parses field=value pairs into a PATCH /experts/{id} body.
func buildPatch(pairs []string) (map[string]any, error) {
	patch := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		switch {
		case slices.Contains(patchStrings, key):
			patch[key] = value
		case slices.Contains(patchInts, key):
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not an integer", key, value)
			}
			patch[key] = n
		case slices.Contains(patchFloats, key):
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", key, value)
			}
			patch[key] = f
		default:
			return nil, fmt.Errorf("unknown field %q (expertise and certifications have their own commands)", key)
		}
	}
	return patch, nil
}

// listCommand builds the add/remove pair for one of an expert's string
// lists, served under /experts/{id}/<segment>.
func listCommand(use, short, segment string) *cobra.Command {
	parent := &cobra.Command{Use: use, Short: short}
	parent.AddCommand(&cobra.Command{
		Use:   "add <id> <value>",
		Short: "Append a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/experts/" + url.PathEscape(args[0]) + "/" + segment
			return editExpert(cmd, func(c *apiClient) (expert.Expert, error) {
				return decodeExpert(c.post(cmd.Context(), path, map[string]string{"value": args[1]}))
			})
		},
	}, &cobra.Command{
		Use:   "remove <id> <index>",
		Short: "Remove the value at a zero-based index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[1])
			if err != nil || i < 0 {
				return fmt.Errorf("index must be a non-negative integer, got %q", args[1])
			}
			path := fmt.Sprintf("/experts/%s/%s/%d", url.PathEscape(args[0]), segment, i)
			return editExpert(cmd, func(c *apiClient) (expert.Expert, error) {
				return decodeExpert(c.delete(cmd.Context(), path))
			})
		},
	})
	return parent
}

func editExpert(cmd *cobra.Command, send func(*apiClient) (expert.Expert, error)) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	e, err := send(client)
	if err != nil {
		return err
	}
	printSuccess("Updated %s", e.ID)
	writeDetail(cmd.OutOrStdout(), e)
	return nil
}

func decodeExpert(resp *http.Response, err error) (expert.Expert, error) {
	var e expert.Expert
	if err != nil {
		return e, err
	}
	err = decodeJSON(resp, &e)
	return e, err
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	f := expertsListCmd.Flags()
	f.String("query", "", "substring over name, expertise, industry, and location")
	f.String("industry", "", "exact industry")
	f.String("function", "", "exact function")
	f.String("location", "", "exact location")
	f.String("type", "", "Internal or External")
	f.String("availability", "", "Available, Busy, or Unknown")
	f.Float64("min-rating", 0, "minimum rating (0-5)")
	f.Int("limit", 0, fmt.Sprintf("page size (default %d, max %d)", roster.DefaultLimit, roster.MaxLimit))
	f.Int("offset", 0, "page offset")
	f.Bool("json", false, "print the raw page")
	expertsShowCmd.Flags().Bool("json", false, "print the raw expert")

	expertsCmd.AddCommand(
		expertsListCmd,
		expertsShowCmd,
		expertsSetCmd,
		listCommand("skill", "Edit an expert's expertise areas", "expertise"),
		listCommand("cert", "Edit an expert's certifications", "certifications"),
	)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# %s\n", config.Path())
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(w, "  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, colorize(colorCyan, "$"+k.EnvVar))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in the config file. Secrets (api.token, llm.api_key) are\n" +
		"read from the environment only.\n\nKeys: " + strings.Join(config.ValidKeys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
