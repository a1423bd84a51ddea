package lexical

import "strings"

// IsStopWord reports whether the lower-case word is a common German, French,
// Italian or English function word.
func IsStopWord(word string) bool {
	return stopWords[word]
}

var stopWords = func() map[string]bool {
	m := make(map[string]bool)
	for _, list := range []string{german, french, italian, english, domain} {
		for _, w := range strings.Fields(list) {
			m[w] = true
		}
	}
	return m
}()

const german = `aber alle allem allen aller alles als also am an ander andere anderem
anderen anderer anderes anderm andern anderr anders auch auf aus bei bin bis bist
da damit dann der den des dem die das dass daß derselbe derselben denselben desselben
demselben dieselbe dieselben dasselbe dazu dein deine deinem deinen deiner deines denn
derer dessen dich dir du dies diese diesem diesen dieser dieses doch dort durch ein
eine einem einen einer eines einig einige einigem einigen einiger einiges einmal er
ihn ihm es etwas euer eure eurem euren eurer eures für gegen gewesen hab habe haben
hat hatte hatten hier hin hinter ich mich mir ihr ihre ihrem ihren ihrer ihres euch
im in indem ins ist jede jedem jeden jeder jedes jene jenem jenen jener jenes jetzt
kann kein keine keinem keinen keiner keines können könnte machen man manche manchem
manchen mancher manches mein meine meinem meinen meiner meines mit muss musste nach
nicht nichts noch nun nur ob oder ohne sehr sein seine seinem seinen seiner seines
selbst sich sie ihnen sind so solche solchem solchen solcher solches soll sollte
sondern sonst über um und uns unsere unserem unseren unser unseres unter viel vom von
vor während war waren warst was weg weil weiter welche welchem welchen welcher welches
wenn werde werden wie wieder will wir wird wirst wo wollen wollte würde würden zu zum
zur zwar zwischen`

const french = `au aux avec ce ces dans de des du elle en et eux il ils je la le les
leur lui ma mais me même mes moi mon ne nos notre nous on ou par pas pour qu que qui
sa se ses son sur ta te tes toi ton tu un une vos votre vous c d j l à m n s t y été
étée étées étés étant étante étants étantes suis es est sommes êtes sont serai seras
sera serons serez seront serais serait serions seriez seraient étais était étions
étiez étaient fus fut fûmes fûtes furent sois soit soyons soyez soient fusse fusses
fût fussions fussiez fussent ayant ayante ayantes ayants eu eue eues eus ai as avons
avez ont aurai auras aura aurons aurez auront aurais aurait aurions auriez auraient
avais avait avions aviez avaient eut eûmes eûtes eurent aie aies ait ayons ayez aient
eusse eusses eût eussions eussiez eussent`

const italian = `ad al allo ai agli all agl alla alle con col coi da dal dallo dai dagli
dall dagl dalla dalle di del dello dei degli dell degl della delle in nel nello nei
negli nell negl nella nelle su sul sullo sui sugli sull sugl sulla sulle per tra
contro io tu lui lei noi voi loro mio mia miei mie tuo tua tuoi tue suo sua suoi sue
nostro nostra nostri nostre vostro vostra vostri vostre mi ti ci vi lo la li le gli
ne il un uno una ma ed se perché anche come dov dove che chi cui non più quale quanto
quanti quanta quante quello quelli quella quelle questo questi questa queste si tutto
tutti a c e i l o ho hai ha abbiamo avete hanno abbia abbiate abbiano avrò avrai avrà
avremo avrete avranno sono sei è siamo siete sia siate siano sarò sarai sarà saremo
sarete saranno era erano essere stato stata`

const english = `i me my myself we our ours ourselves you your yours yourself
yourselves he him his himself she her hers herself it its itself they them their
theirs themselves what which who whom this that these those am is are was were be
been being have has had having do does did doing a an the and but if or because as
until while of at by for with about against between into through during before after
above below to from up down in out on off over under again further then once here
there when where why how all any both each few more most other some such no nor not
only own same so than too very s t can will just don should now`

// Words that occur in nearly every initiative text.
const domain = `bund bundes bundesverfassung verfassung artikel volksinitiative
initiative eidgenössische eidgenossenschaft wird wortlaut lautet geändert folgt
übergangsbestimmung übergangsbestimmungen constitution fédérale initiative populaire
costituzione federale iniziativa popolare`

// StopWords returns every stop word in no particular order.
func StopWords() []string {
	out := make([]string, 0, len(stopWords))
	for w := range stopWords {
		out = append(out, w)
	}
	return out
}
