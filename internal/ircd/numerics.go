package ircd

// Numeric reply codes used by the command handlers, per RFC 1459/2812.
const (
	rplWelcome       = "001"
	rplYourHost      = "002"
	rplCreated       = "003"
	rplMyInfo        = "004"
	rplISupport      = "005"
	rplUmodeIs       = "221"
	rplLUserClient   = "251"
	rplLUserOp       = "252"
	rplLUserUnknown  = "253"
	rplLUserChannels = "254"
	rplLUserMe       = "255"
	rplAway          = "301"
	rplWhoisUser     = "311"
	rplWhoisServer   = "312"
	rplWhoisOperator = "313"
	rplWhoisIdle     = "317"
	rplEndOfWhois    = "318"
	rplWhoisChannels = "319"
	rplListStart     = "321"
	rplList          = "322"
	rplListEnd       = "323"
	rplChannelModeIs = "324"
	rplNoTopic       = "331"
	rplTopic         = "332"
	rplTopicWhoTime  = "333"
	rplInviting      = "341"
	rplWhoReply      = "352"
	rplEndOfWho      = "315"
	rplNamReply      = "353"
	rplEndOfNames    = "366"
	rplBanList       = "367"
	rplEndOfBanList  = "368"
	rplMotd          = "372"
	rplMotdStart     = "375"
	rplEndOfMotd     = "376"
	rplYoureOper     = "381"
	rplRehashing     = "382"
	rplStatsLine     = "219"

	errNoSuchNick       = "401"
	errNoSuchChannel    = "403"
	errCannotSendToChan = "404"
	errUnknownCommand   = "421"
	errNoMotd           = "422"
	errNoNickGiven      = "431"
	errErroneousNick    = "432"
	errNickInUse        = "433"
	errUserNotInChannel = "441"
	errNotOnChannel     = "442"
	errUserOnChannel    = "443"
	errNotRegistered    = "451"
	errNeedMoreParams   = "461"
	errAlreadyRegistred = "462"
	errPasswdMismatch   = "464"
	errChannelIsFull    = "471"
	errInviteOnlyChan   = "473"
	errBannedFromChan   = "474"
	errBadChannelKey    = "475"
	errNoPrivileges     = "481"
	errChanOpPrivsNeeded = "482"
	errUmodeUnknownFlag = "501"
	errUsersDontMatch   = "502"
	errNoOperHost       = "491"
)
