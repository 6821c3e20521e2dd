// ABOUTME: CLI commands for the charm record backend
// ABOUTME: Link, status, manual sync, auto-sync toggle and local wipe

package charm

import (
	"flag"
	"fmt"

	"github.com/harperreed/agency/gateway"
)

// LinkCommand confirms this device is known to the charm server.
func LinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm link", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", c.Config().Host)
	fmt.Println("Charm uses SSH key authentication.")

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", c.Config().AutoSync)
	return nil
}

// StatusCommand prints the server, account and per-collection record counts.
func StatusCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Println("Charm Sync Status")
	fmt.Println("─────────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	id, err := c.ID()
	if err != nil {
		fmt.Println("\nStatus: Not connected")
		return nil //nolint:nilerr // not connected is a valid state
	}
	fmt.Println("\nStatus: Connected to Charm Cloud")
	fmt.Printf("ID:        %s\n\n", id)

	for _, coll := range gateway.Collections {
		keys, err := c.KeysWithPrefix(collectionPrefix(coll))
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", coll, err)
		}
		if len(keys) > 0 {
			fmt.Printf("%-22s %d\n", coll, len(keys))
		}
	}
	return nil
}

// WipeCommand resets the local KV store.
func WipeCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This will delete ALL local data!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  agency charm wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Println("✓ All data wiped")
	return nil
}

// NowCommand performs an immediate sync.
func NowCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("charm sync", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Synced")
	return nil
}

// AutoSyncCommand enables or disables sync after every write.
func AutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("charm auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		fmt.Println("Usage: agency charm auto --enable|--disable")
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save auto-sync: %w", err)
	}
	if *enable {
		fmt.Println("✓ Auto-sync enabled")
	} else {
		fmt.Println("✓ Auto-sync disabled")
	}
	return nil
}
