package ircd

import "github.com/emberircd/emberd/internal/xline"

// commandList is the minimum command set named in SPEC_FULL.md §6, plus
// the supplemented commands from §4.E/§4.J.
func commandList() []*Command {
	return []*Command{
		{Verb: "PASS", MinParams: 1, Level: RegLevelPre, FloodCost: 1, Handler: cmdPass},
		{Verb: "NICK", MinParams: 1, Level: RegLevelPre, FloodCost: 2, Handler: cmdNick},
		{Verb: "USER", MinParams: 4, Level: RegLevelPre, FloodCost: 2, Handler: cmdUser},
		{Verb: "PING", MinParams: 0, Level: RegLevelPre, FloodCost: 1, Handler: cmdPing},
		{Verb: "PONG", MinParams: 0, Level: RegLevelPre, FloodCost: 1, Handler: cmdPong},
		{Verb: "QUIT", MinParams: 0, Level: RegLevelPre, FloodCost: 1, Handler: cmdQuit},

		{Verb: "JOIN", MinParams: 1, Level: RegLevelAny, FloodCost: 3, Handler: cmdJoin},
		{Verb: "PART", MinParams: 1, Level: RegLevelAny, FloodCost: 2, Handler: cmdPart},
		{Verb: "MODE", MinParams: 1, Level: RegLevelAny, FloodCost: 2, Handler: cmdMode},
		{Verb: "TOPIC", MinParams: 1, Level: RegLevelAny, FloodCost: 2, Handler: cmdTopic},
		{Verb: "NAMES", MinParams: 0, Level: RegLevelAny, FloodCost: 1, Handler: cmdNames},
		{Verb: "WHO", MinParams: 0, Level: RegLevelAny, FloodCost: 2, Handler: cmdWho},
		{Verb: "WHOIS", MinParams: 1, Level: RegLevelAny, FloodCost: 2, Handler: cmdWhois},
		{Verb: "PRIVMSG", MinParams: 1, Level: RegLevelAny, FloodCost: 1, Handler: privmsgLike("PRIVMSG")},
		{Verb: "NOTICE", MinParams: 1, Level: RegLevelAny, FloodCost: 1, Handler: privmsgLike("NOTICE")},
		{Verb: "KICK", MinParams: 2, Level: RegLevelAny, FloodCost: 3, Handler: cmdKick},
		{Verb: "INVITE", MinParams: 2, Level: RegLevelAny, FloodCost: 2, Handler: cmdInvite},
		{Verb: "LIST", MinParams: 0, Level: RegLevelAny, FloodCost: 3, Handler: cmdList},

		{Verb: "OPER", MinParams: 2, Level: RegLevelAny, FloodCost: 2, Handler: cmdOper},
		{Verb: "KILL", MinParams: 1, Level: RegLevelOper, FloodCost: 2, Handler: cmdKill},
		{Verb: "GLINE", MinParams: 1, Level: RegLevelOper, FloodCost: 3, Handler: xlineCommand(xline.KindGline, 'g')},
		{Verb: "KLINE", MinParams: 1, Level: RegLevelOper, FloodCost: 3, Handler: xlineCommand(xline.KindKline, 'k')},
		{Verb: "ZLINE", MinParams: 1, Level: RegLevelOper, FloodCost: 3, Handler: xlineCommand(xline.KindZline, 'z')},
		{Verb: "ELINE", MinParams: 1, Level: RegLevelOper, FloodCost: 3, Handler: xlineCommand(xline.KindEline, 'e')},
		{Verb: "QLINE", MinParams: 1, Level: RegLevelOper, FloodCost: 3, Handler: xlineCommand(xline.KindQline, 'q')},
		{Verb: "REHASH", MinParams: 0, Level: RegLevelOper, FloodCost: 2, Handler: cmdRehash},
		{Verb: "STATS", MinParams: 0, Level: RegLevelOper, FloodCost: 2, Handler: cmdStats},
	}
}
