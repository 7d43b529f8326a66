package cmd

import (
	"context"
	"fmt"

	"modpack-server-installer/config"
	"modpack-server-installer/modpacks"
	"modpack-server-installer/ui"
)

// searchPack searches the catalog for term and lets the user choose a pack.
// Without prompts the best match is used.
func searchPack(ctx context.Context, client *modpacks.Client, cfg config.Config, term string, prompts bool) (*modpacks.Pack, error) {
	var packs []*modpacks.Pack
	err := withSpinner(fmt.Sprintf("Searching for '%s'...", term), func() error {
		var err error
		packs, err = client.SearchPacks(ctx, term, cfg.SearchLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(packs) == 0 {
		return nil, fmt.Errorf("no modpacks found for '%s'", term)
	}
	if !prompts || len(packs) == 1 {
		return packs[0], nil
	}

	i, err := pick(fmt.Sprintf("Modpacks matching '%s'", term), packChoices(packs))
	if err != nil {
		return nil, err
	}
	return packs[i], nil
}

func packChoices(packs []*modpacks.Pack) []choice {
	choices := make([]choice, len(packs))
	for i, p := range packs {
		c := choice{Title: p.Name, Detail: p.Synopsis}
		if latest, err := p.Latest(); err == nil {
			c.Tag = latest.Name
			c.Color = ui.ColorRelease
		} else if len(p.Versions) > 0 {
			c.Tag = p.Versions[0].Name
			c.Color = ui.ChannelColor(p.Versions[0].Channel)
		}
		choices[i] = c
	}
	return choices
}
