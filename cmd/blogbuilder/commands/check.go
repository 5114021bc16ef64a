package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Output string `short:"o" help:"Output directory to check (overrides config)"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	outputDir := cfg.Output.Directory
	if c.Output != "" {
		outputDir = c.Output
	}

	checker, err := linkcheck.NewChecker(outputDir, cfg.Site.BaseURL)
	if err != nil {
		return err
	}
	broken, err := checker.Run()
	if err != nil {
		return err
	}
	if len(broken) == 0 {
		fmt.Println("All internal links resolve")
		return nil
	}
	for _, b := range broken {
		fmt.Println(b)
	}
	return fmt.Errorf("%d broken internal link(s)", len(broken))
}
