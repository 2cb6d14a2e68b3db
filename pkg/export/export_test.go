package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title: "Classe CE1-A",
		Columns: []Column{
			{Key: "matricule", Header: "Matricule"},
			{Key: "nom", Header: "Nom"},
			{Key: "statut", Header: "Statut"},
		},
		Rows: []map[string]string{
			{"matricule": "E-001", "nom": "Aïcha Diallo", "statut": "Admis"},
			{"matricule": "E-002", "nom": "Koffi Mensah", "statut": "Redouble"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Matricule;Nom;Statut", lines[0])
	assert.Equal(t, "E-001;Aïcha Diallo;Admis", lines[1])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
