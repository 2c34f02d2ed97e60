// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"getconnected/internal/catalog"
	"getconnected/internal/models"
	"getconnected/pkg/registry"
)

const defaultRegistryPath = "internal/catalog/platforms.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	addPath := addCmd.String("path", defaultRegistryPath, "Path to registry file")
	key := addCmd.String("key", "", "Platform key (e.g., matrix)")
	name := addCmd.String("name", "", "Display name (e.g., Matrix)")
	features := addCmd.String("features", "", "Comma-separated supported features")
	maxGroup := addCmd.Int("maxGroupSize", 0, "Largest supported group")
	privacy := addCmd.Int("privacy", 5, "Privacy score (0-10)")
	popularity := addCmd.Int("popularity", 5, "Popularity score (0-10)")
	osList := addCmd.String("os", "", "Comma-separated supported operating systems")
	free := addCmd.Bool("free", true, "Free to use")
	business := addCmd.Bool("business", false, "Business friendly")
	phone := addCmd.Bool("phone", false, "Requires a phone number")

	// Update command flags
	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	keyUpdate := updateCmd.String("key", "", "Platform key to update")
	field := updateCmd.String("field", "", "Field to update (name, maxGroupSize, privacyScore, feature.<name>, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *key == "" || *name == "" || *maxGroup <= 0 {
			fmt.Println("Error: key, name and a positive maxGroupSize are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.PlatformEntry{
			Key:                 *key,
			Name:                *name,
			Features:            featureFlags(splitList(*features)),
			MaxGroupSize:        *maxGroup,
			SupportedOS:         splitList(*osList),
			PrivacyScore:        *privacy,
			PopularityScore:     *popularity,
			FreeToUse:           *free,
			BusinessFriendly:    *business,
			RequiresPhoneNumber: *phone,
		}
		if err := addPlatform(*addPath, entry, time.Now()); err != nil {
			fmt.Printf("Error adding platform: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added platform: %s\n", *key)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *keyUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: key, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updatePlatform(*updatePath, *keyUpdate, *field, *value, time.Now()); err != nil {
			fmt.Printf("Error updating platform: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated platform %s, field %s to %s\n", *keyUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		count, warnings, err := validateFile(*validatePath)
		for _, w := range warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d platforms.\n", count)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addPlatform(path string, entry registry.PlatformEntry, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.PlatformRegistry{Version: "1.0.0"}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	for _, existing := range reg.Platforms {
		if existing.Key == entry.Key {
			return fmt.Errorf("platform with key %s already exists", entry.Key)
		}
	}
	if unknown := unknownFeatures(entry.Features); len(unknown) > 0 {
		return fmt.Errorf("unknown features: %s", strings.Join(unknown, ", "))
	}

	reg.Platforms = append(reg.Platforms, entry)
	return save(path, reg, now)
}

func updatePlatform(path, key, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	idx := -1
	for i := range reg.Platforms {
		if reg.Platforms[i].Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("platform with key %s not found", key)
	}
	if err := setField(&reg.Platforms[idx], field, value); err != nil {
		return err
	}
	return save(path, reg, now)
}

func setField(p *registry.PlatformEntry, field, value string) error {
	if feature, ok := strings.CutPrefix(field, "feature."); ok {
		if !models.IsKnownFeature(feature) {
			return fmt.Errorf("unknown feature: %s", feature)
		}
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if p.Features == nil {
			p.Features = map[string]bool{}
		}
		p.Features[feature] = on
		return nil
	}

	switch field {
	case "name":
		p.Name = value
	case "supportedOS":
		p.SupportedOS = splitList(value)
	case "maxGroupSize", "privacyScore", "popularityScore":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", field, err)
		}
		switch field {
		case "maxGroupSize":
			p.MaxGroupSize = n
		case "privacyScore":
			p.PrivacyScore = n
		default:
			p.PopularityScore = n
		}
	case "freeToUse", "businessFriendly", "requiresPhoneNumber":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", field, err)
		}
		switch field {
		case "freeToUse":
			p.FreeToUse = b
		case "businessFriendly":
			p.BusinessFriendly = b
		default:
			p.RequiresPhoneNumber = b
		}
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// validateFile runs the schema and catalog checks. Unknown feature names are
// reported as warnings since the engine treats them as unsupported.
func validateFile(path string) (int, []string, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, nil, err
	}
	if len(reg.Platforms) == 0 {
		return 0, nil, fmt.Errorf("registry contains no platforms")
	}
	profiles := make([]models.PlatformProfile, 0, len(reg.Platforms))
	var warnings []string
	for _, entry := range reg.Platforms {
		profiles = append(profiles, catalog.FromEntry(entry))
		for _, f := range unknownFeatures(entry.Features) {
			warnings = append(warnings, fmt.Sprintf("platform %s lists unknown feature %s", entry.Key, f))
		}
	}
	if _, err := catalog.New(profiles...); err != nil {
		return 0, warnings, err
	}
	return len(reg.Platforms), warnings, nil
}

// save re-validates the document before writing it.
func save(path string, reg *registry.PlatformRegistry, now time.Time) error {
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	if _, err := catalog.New(profilesOf(reg)...); err != nil {
		return err
	}
	return registry.SaveRegistry(path, reg)
}

func profilesOf(reg *registry.PlatformRegistry) []models.PlatformProfile {
	out := make([]models.PlatformProfile, 0, len(reg.Platforms))
	for _, e := range reg.Platforms {
		out = append(out, catalog.FromEntry(e))
	}
	return out
}

func unknownFeatures(features map[string]bool) []string {
	var out []string
	for name := range features {
		if !models.IsKnownFeature(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// featureFlags sets every known feature, true for the listed ones.
func featureFlags(enabled []string) map[string]bool {
	flags := make(map[string]bool, len(models.AllFeatures))
	for _, f := range models.AllFeatures {
		flags[f] = false
	}
	for _, f := range enabled {
		flags[f] = true
	}
	return flags
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new platform to the registry
  update   Update an existing platform's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -key matrix -name Matrix -maxGroupSize 10000 -privacy 9 -popularity 3 -features textMessages,groupChats,endToEndEncryption -os android,ios,linux
  registry-updater update -key matrix -field feature.bots -value true
  registry-updater validate -path internal/catalog/platforms.json`)
}
