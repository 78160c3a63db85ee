package scrape

import "testing"

func TestBiodevasParsePage(t *testing.T) {
	src, settings := fixtureSource("biodevas", "Biodevas",
		"https://biodevas.org", "https://biodevas.org")
	s := NewBiodevas(src, settings, nil, discard(), testNow)

	events := s.parsePage(loadDoc(t, "biodevas.html"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (membership post skipped)", len(events))
	}

	paseo := events[0]
	if paseo.Title != "Paseo botánico por Rodiles" {
		t.Errorf("title = %q, want Destacado prefix stripped", paseo.Title)
	}
	if paseo.Date != "18 de mayo" {
		t.Errorf("date = %q, want date from Fecha label", paseo.Date)
	}
	if paseo.Location != "Rodiles" {
		t.Errorf("location = %q, want match from post tags", paseo.Location)
	}

	taller := events[1]
	if taller.Location != "Centro Social los Lugg, Lugones" {
		t.Errorf("location = %q, want category mapping", taller.Location)
	}
	if taller.Date != "Todo el mes de mayo" {
		t.Errorf("date = %q, want month from post URL", taller.Date)
	}

	charla := events[2]
	if charla.Date != "Todo el mes de junio" {
		t.Errorf("date = %q, want month from post URL", charla.Date)
	}
	if charla.Location != "Lugones" {
		t.Errorf("location = %q", charla.Location)
	}
}

func TestBiodevasExtractDateComponents(t *testing.T) {
	src, settings := fixtureSource("biodevas", "Biodevas", "https://biodevas.org", "")
	s := NewBiodevas(src, settings, nil, discard(), testNow)

	got := s.extractDate("Salida al Sueve",
		"Quedamos el día 25 a las 9:00. Actividad del mes de mayo.",
		"https://biodevas.org/2025/05/salida-sueve/")
	if got != "25 de mayo" {
		t.Errorf("date = %q, want day and month joined from summary", got)
	}

	got = s.extractDate("Sin pistas", "Nada que rascar.", "https://biodevas.org/sin-fecha/")
	if got != "Todo el mes de mayo" {
		t.Errorf("date = %q, want current-month fallback", got)
	}
}
