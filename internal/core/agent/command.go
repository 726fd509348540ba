package agent

import (
	"strings"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

// CommandKind is the closed set of slash commands the bot understands.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandHelp
	CommandInfo
	CommandHours
	CommandProducts
	CommandCategories
	CommandSearch
	CommandPrice
	CommandPriceGeneral
	CommandRawPrice
	CommandTierInfo
	CommandTierRequest
	CommandStats
	CommandRates
	CommandSend
	CommandPhoto
	CommandApprove
	CommandReject
)

var kindNames = map[CommandKind]string{
	CommandUnknown:      "unknown",
	CommandHelp:         "help",
	CommandInfo:         "info",
	CommandHours:        "hours",
	CommandProducts:     "products",
	CommandCategories:   "categories",
	CommandSearch:       "search",
	CommandPrice:        "price",
	CommandPriceGeneral: "price_general",
	CommandRawPrice:     "raw_price",
	CommandTierInfo:     "tier_info",
	CommandTierRequest:  "tier_request",
	CommandStats:        "stats",
	CommandRates:        "rates",
	CommandSend:         "send",
	CommandPhoto:        "photo",
	CommandApprove:      "approve",
	CommandReject:       "reject",
}

func (k CommandKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// aliases maps folded command words (no slash, no accents) to kinds.
var aliases = map[string]CommandKind{
	"help":        CommandHelp,
	"ayuda":       CommandHelp,
	"info":        CommandInfo,
	"informacion": CommandInfo,
	"horario":     CommandHours,
	"horarios":    CommandHours,
	"producto":    CommandProducts,
	"productos":   CommandProducts,
	"categoria":   CommandCategories,
	"categorias":  CommandCategories,
	"buscar":      CommandSearch,
	"search":      CommandSearch,
	"precio":      CommandPrice,
	"precios":     CommandPrice,
	"preciog":     CommandPriceGeneral,
	"divisa":      CommandRawPrice,
	"divisas":     CommandRawPrice,
	"codigo":      CommandTierInfo,
	"stats":       CommandStats,
	"bcv":         CommandRates,
	"enviar":      CommandSend,
	"foto":        CommandPhoto,
	"imagen":      CommandPhoto,
	"aprobar":     CommandApprove,
	"rechazar":    CommandReject,
}

// Command is a parsed slash command.
type Command struct {
	Kind CommandKind
	// Name is the command word as typed, without the slash.
	Name string
	Args []string
	// Tier is set for CommandTierRequest.
	Tier pricing.Tier
}

// IsCommand reports whether text should be dispatched as a command.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// ParseCommand splits a "/name arg..." message. Command words match
// ignoring case and accents; the configured tier labels are commands too.
func ParseCommand(text string, labels pricing.Labels) Command {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{Kind: CommandUnknown}
	}

	name := strings.TrimPrefix(fields[0], "/")
	cmd := Command{Kind: CommandUnknown, Name: name, Args: fields[1:]}

	key := utils.Fold(name)
	if kind, ok := aliases[key]; ok {
		cmd.Kind = kind
		return cmd
	}
	for _, t := range pricing.Tiers {
		if key != "" && key == utils.Fold(labels.Label(t)) {
			cmd.Kind = CommandTierRequest
			cmd.Tier = t
			return cmd
		}
	}
	return cmd
}

// registeredCommands is how many command words are recognised, tier labels
// included.
func registeredCommands(labels pricing.Labels) int {
	n := len(aliases)
	for _, t := range pricing.Tiers {
		if _, clash := aliases[utils.Fold(labels.Label(t))]; !clash {
			n++
		}
	}
	return n
}
