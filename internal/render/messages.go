package render

import (
	"errors"

	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/language"
	"github.com/lbscek/sarvajna/internal/prompt"
)

const (
	KindInvalidInput = "invalid_input"
	KindInternal     = "internal"
)

// ErrorKind names the failure class of err for responses, logs and metrics.
func ErrorKind(err error) string {
	if errors.Is(err, prompt.ErrInvalidInput) {
		return KindInvalidInput
	}
	var reqErr *ai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind.String()
	}
	return KindInternal
}

var messages = map[language.Language]map[string]string{
	language.Malayalam: {
		KindInvalidInput:                 "ദയവായി ഒരു ചോദ്യം ടൈപ്പ് ചെയ്യുക.",
		ai.Timeout.String():              "ക്ഷമിക്കണം, മറുപടി ലഭിക്കാൻ വൈകി. ദയവായി വീണ്ടും ശ്രമിക്കുക.",
		ai.AuthenticationFailed.String(): "ക്ഷമിക്കണം, സേവനവുമായി ബന്ധിപ്പിക്കാൻ കഴിഞ്ഞില്ല. ദയവായി അഡ്മിനിസ്ട്രേറ്ററെ അറിയിക്കുക.",
		ai.ServiceUnavailable.String():   "ക്ഷമിക്കണം, സേവനം ഇപ്പോൾ ലഭ്യമല്ല. കുറച്ച് കഴിഞ്ഞ് വീണ്ടും ശ്രമിക്കുക.",
		ai.MalformedResponse.String():    "ക്ഷമിക്കണം, മറുപടി മനസ്സിലാക്കാൻ കഴിഞ്ഞില്ല. ദയവായി വീണ്ടും ശ്രമിക്കുക.",
		ai.NetworkError.String():         "ക്ഷമിക്കണം, നെറ്റ്‌വർക്ക് പ്രശ്നം കാരണം മറുപടി ലഭിച്ചില്ല.",
		KindInternal:                     "ക്ഷമിക്കണം, ഒരു പിശക് സംഭവിച്ചു. ദയവായി വീണ്ടും ശ്രമിക്കുക.",
	},
	language.Manglish: {
		KindInvalidInput:                 "Oru chodyam type cheyyu.",
		ai.Timeout.String():              "Kshamikkanam, marupadi kittan vaiki. Onnu koodi try cheyyamo?",
		ai.AuthenticationFailed.String(): "Kshamikkanam, service-umayi connect cheyyan pattiyilla. Admin-ne ariyikkuka.",
		ai.ServiceUnavailable.String():   "Kshamikkanam, service ippol labhyamalla. Kurachu kazhinju try cheyyu.",
		ai.MalformedResponse.String():    "Kshamikkanam, marupadi manassilakkan pattiyilla. Onnu koodi try cheyyu.",
		ai.NetworkError.String():         "Kshamikkanam, network prashnam kaaranam marupadi kittiyilla.",
		KindInternal:                     "Kshamikkanam, oru error vannu. Onnu koodi try cheyyu.",
	},
	language.English: {
		KindInvalidInput:                 "Please enter a question first.",
		ai.Timeout.String():              "Sorry, the answer took too long. Please try again.",
		ai.AuthenticationFailed.String(): "Sorry, I could not connect to my answer service. Please inform the administrator.",
		ai.ServiceUnavailable.String():   "Sorry, the answer service is unavailable right now. Please try again later.",
		ai.MalformedResponse.String():    "Sorry, I could not understand the answer I received. Please try again.",
		ai.NetworkError.String():         "Sorry, a network problem stopped me from getting an answer.",
		KindInternal:                     "Sorry, I encountered an error while processing your request.",
	},
}

// Message returns the user-facing text for an error kind in lang. Unknown
// language falls back to English.
func Message(kind string, lang language.Language) string {
	byKind, ok := messages[lang]
	if !ok {
		byKind = messages[language.English]
	}
	if msg, ok := byKind[kind]; ok {
		return msg
	}
	return byKind[KindInternal]
}
