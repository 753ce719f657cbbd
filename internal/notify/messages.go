// Package notify holds user-facing notifications and the shop's message table.
package notify

import (
	"strconv"
	"strings"
)

// Key names an entry of the message table.
type Key string

// Success messages.
const (
	ClientCreated   Key = "clientCreated"
	ClientFound     Key = "clientFound"
	OrderCreated    Key = "orderCreated"
	PawnCreated     Key = "pawnCreated"
	DataLoaded      Key = "dataLoaded"
	SearchCompleted Key = "searchCompleted"
	PrintOpened     Key = "printOpened"
	SignedIn        Key = "signedIn"
	SignedOut       Key = "signedOut"
)

// Error messages.
const (
	General               Key = "general"
	NetworkError          Key = "networkError"
	ServerError           Key = "serverError"
	Unauthorized          Key = "unauthorized"
	NotFound              Key = "notFound"
	APIEndpointNotFound   Key = "apiEndpointNotFound"
	BackendError          Key = "backendError"
	ClientNotFound        Key = "clientNotFound"
	ClientLoadError       Key = "clientLoadError"
	ClientSaveError       Key = "clientSaveError"
	ClientSearchError     Key = "clientSearchError"
	ClientDetailError     Key = "clientDetailError"
	ClientListError       Key = "clientListError"
	ProductLoadError      Key = "productLoadError"
	OrderLoadError        Key = "orderLoadError"
	OrderNotFound         Key = "orderNotFound"
	PawnNotFound          Key = "pawnNotFound"
	InvalidPhone          Key = "invalidPhone"
	PhoneLength           Key = "phoneLength"
	CustomerNameRequired  Key = "customerNameRequired"
	PhoneNumberRequired   Key = "phoneNumberRequired"
	SearchCriteriaMissing Key = "searchCriteriaRequired"
	PhoneRequiredSearch   Key = "phoneRequiredForSearch"
	NoResultsFound        Key = "noResultsFound"
	SearchError           Key = "searchError"
	PrintError            Key = "printError"
	PrintPrepareError     Key = "printPrepareError"
	PrintBlocked          Key = "printBlocked"
	PrintRecordNotFound   Key = "printRecordNotFound"
	SessionExpired        Key = "sessionExpired"
	PasswordRequired      Key = "passwordRequired"
	TooManyAttempts       Key = "tooManyAttempts"
)

// Info messages.
const (
	Loading   Key = "loading"
	Searching Key = "searching"
	Saving    Key = "saving"
	Printing  Key = "printing"
	NoData    Key = "noData"
)

var table = map[Key]string{
	ClientCreated:   "អតិថិជនត្រូវបានបង្កើតដោយជោគជ័យ",
	ClientFound:     "រកឃើញអតិថិជន",
	OrderCreated:    "ការបញ្ជាទិញត្រូវបានបង្កើតដោយជោគជ័យ",
	PawnCreated:     "ការបញ្ចាំត្រូវបានបង្កើតដោយជោគជ័យ",
	DataLoaded:      "ទាញយក{0} {1} ចំនួនបានជោគជ័យ",
	SearchCompleted: "ការស្វែងរកត្រូវបានបញ្ចប់ដោយជោគជ័យ",
	PrintOpened:     "បានបើកទំព័របោះពុម្ពដោយជោគជ័យ",
	SignedIn:        "ចូលប្រើប្រាស់ដោយជោគជ័យ",
	SignedOut:       "បានចាកចេញដោយជោគជ័យ",

	General:               "មានបញ្ហាក្នុងការទាញយកទិន្នន័យ",
	NetworkError:          "មានបញ្ហាក្នុងការភ្ជាប់ទៅម៉ាស៊ីនបម្រើ",
	ServerError:           "មានបញ្ហាពីម៉ាស៊ីនបម្រើ សូមព្យាយាមម្តងទៀត",
	Unauthorized:          "សូមចូលប្រើប្រាស់ម្តងទៀត",
	NotFound:              "ព័ត៌មានមិនត្រូវបានរកឃើញ",
	APIEndpointNotFound:   "API endpoint មិនត្រូវបានរកឃើញ",
	BackendError:          "Backend មិនត្រឹមត្រូវ - សូមពិនិត្យ API endpoint",
	ClientNotFound:        "មិនរកឃើញអតិថិជនដែលមានលេខទូរសព្ទនេះទេ",
	ClientLoadError:       "មិនអាចទាញយកបញ្ជីអតិថិជនបានទេ",
	ClientSaveError:       "មានបញ្ហាក្នុងការរក្សាទុកអតិថិជន",
	ClientSearchError:     "មានបញ្ហាក្នុងការស្វែងរកអតិថិជន",
	ClientDetailError:     "មិនអាចទាញយកព័ត៌មានលម្អិតអតិថិជនបានទេ",
	ClientListError:       "មានបញ្ហាក្នុងការទាញយកទិន្នន័យអតិថិជន",
	ProductLoadError:      "មិនអាចទាញយកបញ្ជីទំនិញបានទេ",
	OrderLoadError:        "មិនអាចទាញយកការបញ្ជាទិញចុងក្រោយបានទេ",
	OrderNotFound:         "មិនរកឃើញការបញ្ជាទិញនេះទេ",
	PawnNotFound:          "មិនរកឃើញការបញ្ចាំនេះទេ",
	InvalidPhone:          "លេខទូរសព្ទមិនត្រឹមត្រូវ",
	PhoneLength:           "លេខទូរសព្ទត្រូវតែមាន ៧ ទៅ ១០ ខ្ទង់",
	CustomerNameRequired:  "សូមបញ្ចូលឈ្មោះអតិថិជន",
	PhoneNumberRequired:   "សូមបញ្ចូលលេខទូរសព្ទ",
	SearchCriteriaMissing: "សូមបញ្ចូលលក្ខខណ្ឌស្វែងរកយ៉ាងតិច ១",
	PhoneRequiredSearch:   "សូមបញ្ចូលលេខទូរសព្ទដើម្បីស្វែងរក",
	NoResultsFound:        "មិនរកឃើញអតិថិជនដែលត្រូវគ្នាទេ",
	SearchError:           "មានបញ្ហាក្នុងការស្វែងរក",
	PrintError:            "មានបញ្ហាក្នុងការបោះពុម្ព",
	PrintPrepareError:     "មានបញ្ហាក្នុងការរៀបចំទិន្នន័យសម្រាប់បោះពុម្ព",
	PrintBlocked:          "មិនអាចបើកទំព័របោះពុម្ពបានទេ - browser បានរារាំង popup",
	PrintRecordNotFound:   "លេខ {0} មិនត្រូវបានរកឃើញ",
	SessionExpired:        "វគ្គប្រើប្រាស់ផុតកំណត់ សូមចូលម្តងទៀត",
	PasswordRequired:      "សូមបញ្ចូលពាក្យសម្ងាត់",
	TooManyAttempts:       "ព្យាយាមច្រើនដងពេក សូមរង់ចាំបន្តិចសិន",

	Loading:   "កំពុងទាញយកទិន្នន័យ...",
	Searching: "កំពុងស្វែងរក...",
	Saving:    "កំពុងរក្សាទុក...",
	Printing:  "កំពុងបោះពុម្ព...",
	NoData:    "គ្មានទិន្នន័យ",
}

// Message looks up key and substitutes {0}, {1}, ... with args.
func Message(key Key, args ...string) string {
	msg, ok := table[key]
	if !ok {
		return "Message not found: " + string(key)
	}
	for i, a := range args {
		msg = strings.ReplaceAll(msg, "{"+strconv.Itoa(i)+"}", a)
	}
	return msg
}

// ClientFoundMessage appends the client's name to the found message.
func ClientFoundMessage(name string) string {
	return Message(ClientFound) + ": " + name
}
