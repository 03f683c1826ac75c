package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/amirphl/morevans-pricing/app/form"
	"github.com/amirphl/morevans-pricing/app/schema"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/config"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/prometheus/client_golang/prometheus"
)

var errUsage = errors.New("invalid usage")

const usage = `Usage: pricing-console <command> [flags]

Commands:
  schema [category|configuration]       show the field set of a category
  list                                  list configurations and active factors
  factor create --set key=value ...     create a pricing factor
  factor update ID --set key=value ...  update a pricing factor
  factor delete ID [--yes]              delete a pricing factor
  config create --set key=value --factor category:id ...
  config update ID [--set key=value] [--factor category:id]   (--factor toggles)
  config delete ID [--yes]              delete a configuration
  config set-default ID                 make a configuration the default
  export [-o FILE]                      write configurations and factors to a spreadsheet
  account [--from FILE] [--set key=value] [--check group.key=true]
                                        preview an edited user account as JSON
  whoami                                show the current session
  serve-mock                            run the mock pricing backend
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Console runs the pricing commands for one resolved session
type Console struct {
	config     *config.ConsoleConfig
	session    businessflow.SessionFlow
	collection *businessflow.PricingCollection
	exportFlow businessflow.PricingExportFlow
	confirmer  *promptConfirmer
	registry   *prometheus.Registry
	out        io.Writer
	errOut     io.Writer
}

// writeMetrics dumps the client metrics to the node exporter textfile when enabled
func (c *Console) writeMetrics() {
	if !c.config.Metrics.Enabled {
		return
	}
	if err := prometheus.WriteToTextfile(c.config.Metrics.TextfilePath, c.registry); err != nil {
		log.Printf("Failed to write metrics textfile: %v", err)
	}
}

func (c *Console) whoami() error {
	session := c.session.Session()
	fmt.Fprintf(c.out, "user: %s\nrole: %s\n", valueOr(session.UserID, "-"), valueOr(string(session.Role), "-"))
	if session.ExpiresAt != nil {
		fmt.Fprintf(c.out, "expires: %s\n", session.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}

	dashboard, err := c.session.ResolveDashboard()
	if err != nil {
		fmt.Fprintf(c.out, "dashboard: none (%s)\n", businessflow.UserMessage(err))
		return nil
	}
	fmt.Fprintf(c.out, "dashboard: %s\n", dashboard)
	return nil
}

// load checks the session and fetches the collection
func (c *Console) load(ctx context.Context) error {
	if err := c.session.RequireAdmin(); err != nil {
		return err
	}
	return c.collection.Load(ctx)
}

func (c *Console) list(ctx context.Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIGURATIONS")
	fmt.Fprintln(tw, "ID\tNAME\tDEFAULT\tACTIVE\tBASE PRICE\tFACTORS")
	for _, cfg := range c.collection.Configurations() {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%t\t%s\t%s\n", cfg.ID, cfg.Name, cfg.IsDefault, cfg.IsActive,
			models.FormatValue(cfg.BasePrice), describeActiveFactors(cfg.ActiveFactors))
	}

	for _, group := range c.collection.FactorsByCategory() {
		fmt.Fprintf(tw, "\n%s\n", strings.ToUpper(group.Category.Label()))
		fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tATTRIBUTES")
		keys := schema.Keys(group.Category)
		for _, factor := range group.Factors {
			attrs := factor.AttributeStrings()
			pairs := make([]string, 0, len(keys))
			for _, key := range keys {
				if v, ok := attrs[key]; ok && v != "" {
					pairs = append(pairs, key+"="+v)
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", factor.ID, factor.Name, factor.Description, strings.Join(pairs, " "))
		}
	}
	return tw.Flush()
}

func (c *Console) factor(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage(c.errOut)
		return errUsage
	}
	sub := args[0]

	fs := flag.NewFlagSet("factor "+sub, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	var sets keyValues
	fs.Var(&sets, "set", "field value as key=value (repeatable)")
	yes := fs.Bool("yes", false, "delete without asking for confirmation")
	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		return err
	}
	c.confirmer.assumeYes = *yes

	switch sub {
	case "create":
		if len(positional) != 0 {
			return c.usageError("factor create takes no arguments")
		}
		if err := c.load(ctx); err != nil {
			return err
		}
		f := c.collection.NewFactorForm()
		sets.apply(f.SetField)
		return c.submitFactor(ctx, f)

	case "update":
		id, err := c.idArg(positional)
		if err != nil {
			return err
		}
		if err := c.load(ctx); err != nil {
			return err
		}
		f, err := c.collection.EditFactor(id)
		if err != nil {
			return err
		}
		sets.apply(f.SetField)
		return c.submitFactor(ctx, f)

	case "delete":
		id, err := c.idArg(positional)
		if err != nil {
			return err
		}
		if err := c.load(ctx); err != nil {
			return err
		}
		deleted, err := c.collection.DeleteFactor(ctx, id)
		if err != nil {
			return err
		}
		c.reportDelete(deleted, "Pricing factor", id)
		return nil

	default:
		return c.usageError(fmt.Sprintf("unknown factor command %q", sub))
	}
}

func (c *Console) submitFactor(ctx context.Context, f *form.PricingFactorForm) error {
	result, err := c.collection.SubmitFactor(ctx, f)
	if result == nil {
		if businessflow.IsSubmitBlocked(err) {
			c.printFieldErrors("error", f.Errors())
		}
		return err
	}

	c.printFieldErrors("warning", result.Warnings)
	action := "updated"
	if result.Created {
		action = "created"
	}
	fmt.Fprintf(c.out, "Pricing factor %s\n", action)
	return err
}

func (c *Console) configuration(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage(c.errOut)
		return errUsage
	}
	sub := args[0]

	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	var sets, factors keyValues
	fs.Var(&sets, "set", "field value as key=value (repeatable)")
	fs.Var(&factors, "factor", "factor selection as category:id (repeatable)")
	yes := fs.Bool("yes", false, "delete without asking for confirmation")
	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		return err
	}
	c.confirmer.assumeYes = *yes

	switch sub {
	case "create", "update":
		var id uint
		if sub == "update" {
			if id, err = c.idArg(positional); err != nil {
				return err
			}
		} else if len(positional) != 0 {
			return c.usageError("config create takes no arguments")
		}
		if err := c.load(ctx); err != nil {
			return err
		}

		cf := c.collection.NewConfigurationForm()
		if id != 0 {
			if cf, err = c.collection.EditConfiguration(id); err != nil {
				return err
			}
		}
		sets.apply(cf.SetField)
		for _, ref := range factors {
			category, factorID, err := parseFactorRef(ref)
			if err != nil {
				return c.usageError(err.Error())
			}
			if err := cf.ToggleFactor(category, factorID); err != nil {
				return err
			}
		}
		return c.submitConfiguration(ctx, cf)

	case "delete":
		id, err := c.idArg(positional)
		if err != nil {
			return err
		}
		if err := c.load(ctx); err != nil {
			return err
		}
		deleted, err := c.collection.DeleteConfiguration(ctx, id)
		if err != nil {
			return err
		}
		c.reportDelete(deleted, "Configuration", id)
		return nil

	case "set-default":
		id, err := c.idArg(positional)
		if err != nil {
			return err
		}
		if err := c.session.RequireAdmin(); err != nil {
			return err
		}
		if err := c.collection.SetDefaultConfiguration(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Configuration %d is now the default\n", id)
		return nil

	default:
		return c.usageError(fmt.Sprintf("unknown config command %q", sub))
	}
}

func (c *Console) submitConfiguration(ctx context.Context, cf *form.PricingConfigurationForm) error {
	result, err := c.collection.SubmitConfiguration(ctx, cf)
	if result == nil {
		if businessflow.IsSubmitBlocked(err) {
			c.printFieldErrors("error", cf.Errors())
		}
		return err
	}

	action := "updated"
	if result.Created {
		action = "created"
	}
	fmt.Fprintf(c.out, "Configuration %s\n", action)
	return err
}

func (c *Console) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	output := fs.String("o", businessflow.ExportFilename, "output file")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}

	if err := c.load(ctx); err != nil {
		return err
	}
	snapshot := c.collection.Snapshot()
	_, data, err := c.exportFlow.Export(snapshot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	fmt.Fprintf(c.out, "Exported %d configurations and %d factors to %s\n", len(snapshot.Configurations), len(snapshot.Factors), *output)
	return nil
}

func (c *Console) reportDelete(deleted bool, what string, id uint) {
	if !deleted {
		fmt.Fprintln(c.out, "Aborted")
		return
	}
	fmt.Fprintf(c.out, "%s %d deleted\n", what, id)
}

func (c *Console) printFieldErrors(level string, errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.errOut, "%s: %s: %s\n", level, k, errs[k])
	}
}

func (c *Console) idArg(positional []string) (uint, error) {
	if len(positional) != 1 {
		return 0, c.usageError("expected exactly one ID")
	}
	id, err := strconv.ParseUint(positional[0], 10, 64)
	if err != nil || id == 0 {
		return 0, c.usageError(fmt.Sprintf("invalid ID %q", positional[0]))
	}
	return uint(id), nil
}

func (c *Console) usageError(message string) error {
	fmt.Fprintln(c.errOut, message)
	return errUsage
}

// runSchema prints the field set of one category, or the category list
func runSchema(args []string, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if len(args) == 0 {
		fmt.Fprintln(tw, "CATEGORY\tLABEL\tENDPOINT\tFIELDS")
		for _, category := range models.PricingFactorCategories {
			slug, _ := businessflow.FactorEndpointSlug(category)
			fmt.Fprintf(tw, "%s\t%s\t%s%s/\t%s\n", category, category.Label(), businessflow.PricingFactorsPath, slug,
				strings.Join(schema.Keys(category), ", "))
		}
		return tw.Flush()
	}

	var fields []schema.FieldDescriptor
	if args[0] == "configuration" {
		fields = schema.ConfigurationFields()
	} else {
		category := models.PricingFactorCategory(args[0])
		if !category.IsKnown() {
			var ok bool
			if category, ok = businessflow.CategoryForSlug(args[0]); !ok {
				return businessflow.NewBusinessErrorf("PRICING_FACTOR_CATEGORY_INVALID", "Unknown pricing factor category %q", businessflow.ErrInvalidCategory, args[0])
			}
		}
		fields = schema.Fields(category)
	}

	fmt.Fprintln(tw, "KEY\tLABEL\tTYPE\tDEFAULT\tRULES")
	for _, d := range fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Key, d.Label, d.Type, d.Default, valueOr(d.Rules(), "-"))
	}
	return tw.Flush()
}

// runAccount applies --set and --check edits to an account and prints the result. The
// account starts from --from, or from a blank one with the default notification choices.
func runAccount(args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("account", flag.ContinueOnError)
	fs.SetOutput(errOut)
	from := fs.String("from", "", "JSON file holding the account to edit")
	var sets, checks keyValues
	fs.Var(&sets, "set", "field value as key=value, address fields as address.key=value (repeatable)")
	fs.Var(&checks, "check", "checkbox as group.key=true|false (repeatable)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		fmt.Fprintln(errOut, "account takes no arguments")
		return errUsage
	}

	account := models.UserAccount{NotificationPreferences: models.DefaultNotificationPreferences()}
	if *from != "" {
		data, err := os.ReadFile(*from)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *from, err)
		}
		if err := json.Unmarshal(data, &account); err != nil {
			return fmt.Errorf("failed to decode %s: %w", *from, err)
		}
	}

	f := form.NewUserAccountForm(account)
	sets.apply(f.SetField)
	for _, raw := range checks {
		ref, value, _ := strings.Cut(raw, "=")
		group, key, ok := strings.Cut(strings.TrimSpace(ref), ".")
		checked, err := strconv.ParseBool(strings.TrimSpace(value))
		if !ok || err != nil {
			fmt.Fprintf(errOut, "invalid checkbox %q, expected group.key=true|false\n", raw)
			return errUsage
		}
		if group != form.GroupNotificationPreferences && group != form.GroupSecuritySettings {
			fmt.Fprintf(errOut, "unknown checkbox group %q\n", group)
			return errUsage
		}
		f.SetChecked(group, key, checked)
	}

	data, err := json.MarshalIndent(f.Account(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// keyValues collects a repeatable string flag
type keyValues []string

func (kv *keyValues) String() string { return strings.Join(*kv, ",") }

func (kv *keyValues) Set(value string) error {
	*kv = append(*kv, value)
	return nil
}

// apply feeds each key=value pair to set. A category pair goes first since switching the
// category resets the category fields.
func (kv keyValues) apply(set func(key, value string)) {
	pairs := make([][2]string, 0, len(kv))
	for _, raw := range kv {
		key, value, _ := strings.Cut(raw, "=")
		pairs = append(pairs, [2]string{strings.TrimSpace(key), value})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i][0] == "category" && pairs[j][0] != "category"
	})
	for _, p := range pairs {
		set(p[0], p[1])
	}
}

// parseFactorRef reads "category:id"
func parseFactorRef(ref string) (models.PricingFactorCategory, uint, error) {
	rawCategory, rawID, ok := strings.Cut(ref, ":")
	if !ok {
		return "", 0, fmt.Errorf("invalid factor %q, expected category:id", ref)
	}
	category := models.PricingFactorCategory(rawCategory)
	if !category.IsKnown() {
		return "", 0, fmt.Errorf("unknown pricing factor category %q", rawCategory)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return "", 0, fmt.Errorf("invalid factor id %q", rawID)
	}
	return category, uint(id), nil
}

// parseInterspersed parses flags that may appear before or after positional arguments
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, errUsage
			}
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func describeActiveFactors(active models.ActiveFactors) string {
	var parts []string
	for _, category := range models.PricingFactorCategories {
		ids := active[category]
		if len(ids) == 0 {
			continue
		}
		rendered := make([]string, len(ids))
		for i, id := range ids {
			rendered[i] = strconv.FormatUint(uint64(id), 10)
		}
		parts = append(parts, string(category)+":"+strings.Join(rendered, ","))
	}
	return valueOr(strings.Join(parts, " "), "-")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// promptConfirmer asks on the terminal; assumeYes answers every prompt with yes
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newLineReader(r io.Reader) *bufio.Reader {
	return bufio.NewReader(r)
}

func (p *promptConfirmer) Confirm(prompt string) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
