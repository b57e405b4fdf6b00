// Package main provides the walletcore CLI for creating mnemonics and deriving
// keys, addresses and signatures from them.
package main

import (
	"bufio"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/walletcore"
	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/errs"
	"github.com/complex-gh/walletcore/mnemonic"
	"github.com/complex-gh/walletcore/secret"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
	lang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	maxWidth = 72
)

var logger = log.WithFields(log.Fields{"prefix": "walletcore"})

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd
	labelStyle = lipgloss.NewStyle().Bold(true).Width(24) //nolint:mnd

	language       string
	passphrase     string
	verbose        bool
	wordCountStr   string
	sshKeyPath     string
	seedPassphrase string
	coinID         string
	derivePath     string
	account        uint32
	count          int
	showPrivate    bool

	rootCmd = &cobra.Command{
		Use:   "walletcore",
		Short: "Derive wallet keys, addresses and signatures from a mnemonic",
		Long: `Derive wallet keys, addresses and signatures from a BIP39 mnemonic.

Commands that need a mnemonic read it from a pipe on stdin or prompt for it
on the terminal, so the phrase never ends up in your shell history.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.SetOutput(os.Stderr)
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			log.SetLevel(log.WarnLevel)
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	mnemonicCmd = &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate a mnemonic, at random or from an SSH key",
		Long: `Generate a mnemonic.

Without --ssh-key the entropy is random. With --ssh-key the phrase is derived
deterministically from an ed25519 SSH private key; the key cannot be recovered
from the phrase.

Valid word counts are: 12, 15, 16, 18, 21, or 24.
- 12, 15, 18, 21, 24 words use BIP39 format
- 16 words use Polyseed format and need --ssh-key`,
		Example: `  walletcore mnemonic
  walletcore mnemonic --words 12
  walletcore mnemonic --ssh-key ~/.ssh/id_ed25519 --words 12,24
  walletcore mnemonic --ssh-key ~/.ssh/id_ed25519 --seed-passphrase "my-passphrase"`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			wl, err := getWordlist(language)
			if err != nil {
				return err
			}
			counts, err := parseWordCounts(wordCountStr)
			if err != nil {
				return fmt.Errorf("invalid word counts: %w", err)
			}

			if sshKeyPath == "" {
				for _, n := range counts {
					if n == 16 { //nolint:mnd
						return fmt.Errorf("16-word polyseed phrases require --ssh-key")
					}
					phrase, err := wl.Generate(n / 3 * 32) //nolint:mnd
					if err != nil {
						return err
					}
					fmt.Println(phrase)
				}
				return nil
			}

			key, err := readSSHKey(sshKeyPath)
			if err != nil {
				return err
			}
			defer secret.Wipe(*key)

			for _, n := range counts {
				phrase, err := walletcore.MnemonicFromKey(key, n, seedPassphrase)
				if err != nil {
					return err
				}
				if n != 16 && wl != mnemonic.English { //nolint:mnd
					if phrase, err = translate(phrase, wl); err != nil {
						return err
					}
				}
				fmt.Println(phrase)
			}
			return nil
		},
	}

	validateCmd = &cobra.Command{
		Use:   "validate [words...]",
		Short: "Check the words and checksum of a mnemonic",
		RunE: func(_ *cobra.Command, args []string) error {
			wl, err := getWordlist(language)
			if err != nil {
				return err
			}
			phrase := strings.Join(args, " ")
			if phrase == "" {
				if phrase, err = readMnemonic(); err != nil {
					return err
				}
			}
			if err := wl.Validate(phrase); err != nil {
				return fmt.Errorf("invalid mnemonic: %w", err)
			}
			fmt.Println("valid")
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Print the hex encoded BIP39 seed of a mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)
			fmt.Println(hex.EncodeToString(seed))
			return nil
		},
	}

	deriveCmd = &cobra.Command{
		Use:   "derive",
		Short: "Derive addresses of a coin",
		Long: `Derive addresses of a coin.

Without --path the coin's default path is used, and --count addresses are
listed along its last component.`,
		Example: `  walletcore derive --coin bitcoin-native-segwit --count 5
  walletcore derive --coin ethereum --path "m/44'/60'/0'/0/7"
  walletcore derive --coin solana --private`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			desc, err := coin.Lookup(coin.ID(coinID))
			if err != nil {
				return err
			}
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)

			paths := []string{derivePath}
			if derivePath == "" {
				paths = enumeratePaths(desc, count)
			}

			for _, p := range paths {
				logger.WithFields(log.Fields{"coin": desc.ID, "path": p, "curve": desc.Curve}).Debug("deriving key")
				if err := printKey(seed, p, desc.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}

	xpubCmd = &cobra.Command{
		Use:   "xpub",
		Short: "Print the extended keys of an account",
		Example: `  walletcore xpub --coin bitcoin-native-segwit
  walletcore xpub --coin bitcoin --account 1 --private`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)

			xprv, xpub, err := walletcore.AccountExtendedKeys(seed, coin.ID(coinID), account)
			if err != nil {
				return err
			}
			printField("Extended public key", xpub)
			if showPrivate {
				printField("Extended private key", xprv)
			}
			return nil
		},
	}

	addressCmd = &cobra.Command{
		Use:   "address <extended-key> <path>",
		Short: "Derive an address from an extended key",
		Long: `Derive an address from an extended key.

The path is relative to the extended key, so "m/0/3" is the fourth receive
address below an account key.`,
		Example: `  walletcore address --coin bitcoin-native-segwit zpub6rFR7y4Q2Aij... m/0/0`,
		Args:    cobra.ExactArgs(2), //nolint:mnd
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := walletcore.AddressFromExtended(coin.ID(coinID), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		},
	}

	signCmd = &cobra.Command{
		Use:   "sign <digest-hex>",
		Short: "Sign a 32-byte digest with a derived key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			digest, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("could not decode digest: %w", err)
			}
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)

			key, err := walletcore.DeriveKey(seed, derivePath, coin.ID(coinID))
			if err != nil {
				return err
			}
			defer key.Close()

			sig, err := key.Sign(digest)
			if err != nil {
				return err
			}
			printField("Path", key.Path())
			printField("Public key", hex.EncodeToString(key.PublicKey()))
			printField("Signature", hex.EncodeToString(sig))
			return nil
		},
	}

	verifyCmd = &cobra.Command{
		Use:   "verify <pubkey-hex> <digest-hex> <signature-hex>",
		Short: "Verify a signature",
		Args:  cobra.ExactArgs(3), //nolint:mnd
		RunE: func(_ *cobra.Command, args []string) error {
			decoded := make([][]byte, len(args))
			for i, a := range args {
				b, err := hex.DecodeString(a)
				if err != nil {
					return fmt.Errorf("could not decode argument %d: %w", i+1, err)
				}
				decoded[i] = b
			}
			if !walletcore.Verify(coin.ID(coinID), decoded[0], decoded[1], decoded[2]) {
				return fmt.Errorf("signature is not valid")
			}
			fmt.Println("valid")
			return nil
		},
	}

	coinsCmd = &cobra.Command{
		Use:   "coins",
		Short: "List the supported coins",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, d := range coin.All() {
				fmt.Printf("%s%s %s\n", labelStyle.Render(string(d.ID)), d.Curve, d.DefaultPath)
			}
			return nil
		},
	}

	nostrCmd = &cobra.Command{
		Use:   "nostr",
		Short: "Derive NIP-06 Nostr keys",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)
			npub, nsec, err := walletcore.DeriveNostrKeysFromSeed(seed)
			if err != nil {
				return err
			}
			printField("npub", npub)
			if showPrivate {
				printField("nsec", nsec)
			}
			return nil
		},
	}

	paynymCmd = &cobra.Command{
		Use:   "paynym",
		Short: "Derive the BIP47 payment code",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			seed, err := readSeed()
			if err != nil {
				return err
			}
			defer secret.Wipe(seed)
			payNym, err := walletcore.DerivePayNymFromSeed(seed)
			if err != nil {
				return err
			}
			printField("Payment code", payNym.PaymentCode)
			printField("Notification address", payNym.NotificationAddress)
			return nil
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for walletcore.

To load completions:

Bash:
  $ source <(walletcore completion bash)

Zsh:
  $ walletcore completion zsh > "${fpath[1]}/_walletcore"

Fish:
  $ walletcore completion fish | source

PowerShell:
  PS> walletcore completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", "en", "Mnemonic language")
	rootCmd.PersistentFlags().StringVar(&passphrase, "passphrase", "", "BIP39 passphrase")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log derivation steps to stderr")

	mnemonicCmd.Flags().StringVarP(&wordCountStr, "words", "w", "", "Word counts to generate (comma-separated: 12,15,16,18,21,24)")
	mnemonicCmd.Flags().StringVar(&sshKeyPath, "ssh-key", "", "Derive the phrase from this ed25519 SSH private key")
	mnemonicCmd.Flags().StringVar(&seedPassphrase, "seed-passphrase", "", "Passphrase to combine with SSH key seed for additional entropy")

	for _, c := range []*cobra.Command{deriveCmd, xpubCmd, addressCmd, signCmd, verifyCmd} {
		c.Flags().StringVarP(&coinID, "coin", "c", "bitcoin", "Coin identifier, see 'walletcore coins'")
	}
	for _, c := range []*cobra.Command{deriveCmd, signCmd} {
		c.Flags().StringVarP(&derivePath, "path", "p", "", "Derivation path, the coin's default if empty")
	}
	deriveCmd.Flags().IntVarP(&count, "count", "n", 1, "Number of addresses along the default path")
	xpubCmd.Flags().Uint32VarP(&account, "account", "a", 0, "Account number")
	for _, c := range []*cobra.Command{deriveCmd, xpubCmd, nostrCmd} {
		c.Flags().BoolVar(&showPrivate, "private", false, "Also print private keys")
	}

	rootCmd.AddCommand(mnemonicCmd, validateCmd, seedCmd, deriveCmd, xpubCmd, addressCmd,
		signCmd, verifyCmd, coinsCmd, nostrCmd, paynymCmd, manCmd, completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		renderError(err)
		os.Exit(1)
	}
}

// enumeratePaths lists n paths along the last component of the coin's
// default path.
func enumeratePaths(desc *coin.Descriptor, n int) []string {
	base := desc.Path()
	if n < 1 || len(base) == 0 {
		return []string{base.String()}
	}
	paths := make([]string, 0, n)
	last := base[len(base)-1]
	for i := 0; i < n; i++ {
		p := append(base[:len(base)-1:len(base)-1], last)
		p[len(p)-1].Value = last.Value + uint32(i) //nolint:gosec
		paths = append(paths, p.String())
	}
	return paths
}

func printKey(seed []byte, path string, id coin.ID) error {
	key, err := walletcore.DeriveKey(seed, path, id)
	if err != nil {
		return err
	}
	defer key.Close()

	addr, err := key.Address()
	if err != nil {
		return err
	}
	printField(key.Path(), addr)
	if !showPrivate {
		return nil
	}

	if wif, err := key.WIF(); err == nil {
		printField("  private key (WIF)", wif)
		return nil
	} else if !errors.Is(err, errs.UnsupportedCoin) {
		return err
	}
	priv, err := key.PrivateKey()
	if err != nil {
		return err
	}
	defer secret.Wipe(priv)
	printField("  private key", hex.EncodeToString(priv))
	return nil
}

func printField(label, value string) {
	fmt.Println(labelStyle.Render(label) + value)
}

// readSeed reads a mnemonic and stretches it with the --passphrase flag.
func readSeed() ([]byte, error) {
	wl, err := getWordlist(language)
	if err != nil {
		return nil, err
	}
	phrase, err := readMnemonic()
	if err != nil {
		return nil, err
	}
	seed, err := wl.ToSeedChecked(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return seed, nil
}

// readMnemonic reads the phrase from a stdin pipe, or prompts for it on the
// terminal without echo.
func readMnemonic() (string, error) {
	return readMnemonicFrom(os.Stdin)
}

func readMnemonicFrom(in *os.File) (string, error) {
	fi, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("could not inspect stdin: %w", err)
	}
	if fi.Mode()&os.ModeNamedPipe != 0 {
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			return strings.TrimSpace(scanner.Text()), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read mnemonic: %w", err)
		}
		return "", fmt.Errorf("no mnemonic on stdin")
	}

	defer fmt.Fprintf(os.Stderr, "\n")
	phrase, err := readPassword("Enter the mnemonic: ")
	if err != nil {
		return "", err
	}
	defer secret.Wipe(phrase)
	return strings.TrimSpace(string(phrase)), nil
}

func readSSHKey(path string) (*ed25519.PrivateKey, error) {
	f, err := openFileOrStdin(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	bts, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}
	defer secret.Wipe(bts)

	key, err := parsePrivateKey(bts, nil)
	if err != nil && isPasswordError(err) {
		pass, perr := askKeyPassphrase(path)
		if perr != nil {
			return nil, perr
		}
		defer secret.Wipe(pass)
		key, err = parsePrivateKey(bts, pass)
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse key: %w", err)
	}

	switch k := key.(type) {
	case *ed25519.PrivateKey:
		return k, nil
	case ed25519.PrivateKey:
		return &k, nil
	default:
		return nil, fmt.Errorf("unknown key type: %v", key)
	}
}

func openFileOrStdin(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	// G304: path is user-provided input, which is expected for a CLI tool
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return f, nil
}

func parsePrivateKey(bts, pass []byte) (interface{}, error) {
	if len(pass) == 0 {
		//nolint: wrapcheck
		return ssh.ParseRawPrivateKey(bts)
	}
	//nolint: wrapcheck
	return ssh.ParseRawPrivateKeyWithPassphrase(bts, pass)
}

func isPasswordError(err error) bool {
	var kerr *ssh.PassphraseMissingError
	return errors.As(err, &kerr)
}

func askKeyPassphrase(path string) ([]byte, error) {
	defer fmt.Fprintf(os.Stderr, "\n")
	return readPassword(fmt.Sprintf("Enter the passphrase to unlock %q: ", path))
}

func readPassword(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open tty: %w", err)
	}
	defer t.Close()                                     //nolint: errcheck
	pass, err := term.ReadPassword(int(t.Input().Fd())) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read passphrase: %w", err)
	}
	return pass, nil
}

// translate re-encodes an English phrase in another wordlist. The entropy
// and therefore the seed of other languages differ, as BIP39 hashes words.
func translate(phrase string, wl *mnemonic.Wordlist) (string, error) {
	entropy, err := mnemonic.MnemonicToEntropy(phrase)
	if err != nil {
		return "", err
	}
	defer secret.Wipe(entropy)
	return wl.FromEntropy(entropy)
}

func parseWordCounts(wordCountStr string) ([]int, error) {
	if wordCountStr == "" {
		return []int{24}, nil //nolint:mnd
	}

	validCounts := map[int]bool{12: true, 15: true, 16: true, 18: true, 21: true, 24: true}
	parts := strings.Split(wordCountStr, ",")
	wordCounts := make([]int, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		count, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid word count %q: %w", part, err)
		}

		if !validCounts[count] {
			return nil, fmt.Errorf("invalid word count: %d (must be 12, 15, 16, 18, 21, or 24)", count)
		}

		wordCounts = append(wordCounts, count)
	}

	if len(wordCounts) == 0 {
		return []int{24}, nil //nolint:mnd
	}

	return wordCounts, nil
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

// renderError shows err in a styled block on terminals. Cobra has already
// printed the plain message to stderr.
func renderError(err error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return
	}
	msg := err.Error()
	if kind := errs.KindOf(err); kind != errs.Unknown {
		msg = fmt.Sprintf("%s (%s)", msg, kind)
	}
	b := strings.Builder{}
	b.WriteRune('\n')
	renderBlock(&b, errorStyle, getWidth(maxWidth), msg)
	fmt.Print(b.String())
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}

func sanitizeLang(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

var wordLists = map[lang.Tag]*mnemonic.Wordlist{
	lang.Chinese:              mnemonic.ChineseSimplified,
	lang.SimplifiedChinese:    mnemonic.ChineseSimplified,
	lang.TraditionalChinese:   mnemonic.ChineseTraditional,
	lang.Czech:                mnemonic.Czech,
	lang.AmericanEnglish:      mnemonic.English,
	lang.BritishEnglish:       mnemonic.English,
	lang.English:              mnemonic.English,
	lang.French:               mnemonic.French,
	lang.Italian:              mnemonic.Italian,
	lang.Japanese:             mnemonic.Japanese,
	lang.Korean:               mnemonic.Korean,
	lang.Spanish:              mnemonic.Spanish,
	lang.EuropeanSpanish:      mnemonic.Spanish,
	lang.LatinAmericanSpanish: mnemonic.Spanish,
}

// getWordlist resolves a language code ("en", "ja"), English language name
// ("Japanese") or wordlist name ("chinese-traditional").
func getWordlist(language string) (*mnemonic.Wordlist, error) {
	if wl, ok := mnemonic.WordlistByName(sanitizeLang(language)); ok {
		return wl, nil
	}

	language = sanitizeLang(language)
	tag := lang.Make(language)
	en := display.English.Languages() // default language name matcher
	for t := range wordLists {
		if sanitizeLang(en.Name(t)) == language {
			tag = t
			break
		}
	}
	if tag == lang.Und { // Unknown language
		return nil, fmt.Errorf("this language is not supported")
	}
	if wl := wordLists[tag]; wl != nil {
		return wl, nil
	}
	base, _ := tag.Base()
	if wl := wordLists[lang.MustParse(base.String())]; wl != nil {
		return wl, nil
	}
	return nil, fmt.Errorf("this language is not supported")
}
