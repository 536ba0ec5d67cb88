package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newQuickstartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "Show examples and usage instructions",
		Run: func(cmd *cobra.Command, _ []string) {
			printQuickstart(cmd.OutOrStdout())
		},
	}
}

func printQuickstart(w io.Writer) {
	fmt.Fprintln(w, `Quickstart Guide for llmpipe

Every bridge prints READY, then answers one line per input line.
Send "exit" or close stdin to stop it. Logs go to stderr.

1. Multiple choice
   Answers are A, B, C, D, E or Unknown.

   export OPENAI_API_KEY=sk-...
   printf 'Which planet is largest? A) Mars B) Jupiter C) Venus\nexit\n' | llmpipe choice

   Use --match=token to ignore letters inside ordinary words.

2. Fill in the blank
   Input is length,first_letter,hint_word.

   printf '5,c,happy\n' | llmpipe blank

3. Gemini
   export GEMINI_API_KEY=...
   llmpipe blank --provider=gemini --model=gemini-2.5-flash

4. Driving a bridge from another process
   llmpipe ask -- llmpipe choice --log-level=debug

5. Configuration file
   llmpipe choice --config=llmpipe.yaml

   provider: openai
   model: gpt-4o-mini
   max_tokens: 10
   temperature: 0
   timeout: 30s
   requests_per_minute: 60
   match: substring

Environment variables LLMPIPE_<KEY> override the file, flags override both.
A .env file in the working directory is loaded first.`)
}
